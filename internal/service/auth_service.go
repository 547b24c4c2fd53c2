package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rag-console/internal/model"
	"rag-console/internal/session"
	"rag-console/pkg/apierror"
)

const (
	LoginFailedMessage      = "Login failed. Please try again."
	LoginMissingFieldsError = "Username and password are required."
)

type AuthService struct {
	api    AuthAPI
	tokens session.TokenStore
}

func NewAuthService(api AuthAPI, tokens session.TokenStore) *AuthService {
	return &AuthService{api: api, tokens: tokens}
}

// Login exchanges the credentials for a token and stores it. On failure the
// stored token is left as it was.
func (s *AuthService) Login(ctx context.Context, username string, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", model.ErrInvalidInput)
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return fmt.Errorf("login: %w", model.ErrTokenMissing)
	}

	if err := s.tokens.SetToken(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.tokens.RemoveToken(ctx)
}

func (s *AuthService) CurrentUser(ctx context.Context) (model.User, error) {
	return s.api.CurrentUser(ctx)
}

// LoginErrorMessage is the text the login form shows for err.
func LoginErrorMessage(err error) string {
	if errors.Is(err, model.ErrInvalidInput) {
		return LoginMissingFieldsError
	}
	if detail := apierror.UpstreamDetail(err); detail != "" {
		return detail
	}

	return LoginFailedMessage
}
