package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"rag-console/internal/event"
	"rag-console/internal/model"
)

type UserService struct {
	api UserAPI
	bus event.Bus
}

func NewUserService(api UserAPI, bus event.Bus) *UserService {
	return &UserService{api: api, bus: bus}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.api.List(ctx)
}

func (s *UserService) Create(ctx context.Context, input model.UserCreate) ([]model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", model.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: email address is not valid", model.ErrInvalidInput)
	}

	user, err := s.api.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username)
	return s.refresh(ctx, "created", user.ID)
}

// Update applies a partial change such as toggling is_active or is_superuser.
func (s *UserService) Update(ctx context.Context, id string, input model.UserUpdate) ([]model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrInvalidInput)
	}

	if _, err := s.api.Update(ctx, id, input); err != nil {
		return nil, err
	}

	slog.Info("user updated", "user_id", id)
	return s.refresh(ctx, "updated", id)
}

func (s *UserService) Delete(ctx context.Context, id string) ([]model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrInvalidInput)
	}

	if err := s.api.Delete(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("user deleted", "user_id", id)
	return s.refresh(ctx, "deleted", id)
}

func (s *UserService) refresh(ctx context.Context, action string, id string) ([]model.User, error) {
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeUsersChanged, action, id))
	}

	users, err := s.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh users: %w", err)
	}

	return users, nil
}
