package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"rag-console/internal/model"
)

type AuthClient struct {
	c *Client
}

// Login exchanges credentials for a bearer token. The request is anonymous so a
// rejected password comes back as an ordinary APIError and never touches the session.
func (a *AuthClient) Login(ctx context.Context, username string, password string) (model.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := request{
		op:          "auth.login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}

	var token model.TokenResponse
	if err := a.c.do(ctx, req, &token); err != nil {
		return model.TokenResponse{}, err
	}

	return token, nil
}

func (a *AuthClient) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	err := a.c.do(ctx, request{op: "auth.me", method: http.MethodGet, path: "/auth/me"}, &user)
	return user, err
}
