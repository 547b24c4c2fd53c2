package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"rag-console/internal/model"
)

type UsersClient struct {
	c *Client
}

func (u *UsersClient) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := u.c.do(ctx, request{op: "users.list", method: http.MethodGet, path: "/users"}, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (u *UsersClient) Create(ctx context.Context, input model.UserCreate) (model.User, error) {
	req, err := jsonRequest("users.create", http.MethodPost, "/users", input)
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	err = u.c.do(ctx, req, &user)
	return user, err
}

func (u *UsersClient) Update(ctx context.Context, id string, input model.UserUpdate) (model.User, error) {
	req, err := jsonRequest("users.update", http.MethodPut, "/users/"+url.PathEscape(id), input)
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	err = u.c.do(ctx, req, &user)
	return user, err
}

func (u *UsersClient) Delete(ctx context.Context, id string) error {
	return u.c.do(ctx, request{op: "users.delete", method: http.MethodDelete, path: "/users/" + url.PathEscape(id)}, nil)
}
