package service

import (
	"context"
	"io"

	"rag-console/internal/model"
)

// The interfaces below are the slices of the backend client each service needs.
// apiclient's resource clients satisfy them.

type AuthAPI interface {
	Login(ctx context.Context, username string, password string) (model.TokenResponse, error)
	CurrentUser(ctx context.Context) (model.User, error)
}

type UserAPI interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, input model.UserCreate) (model.User, error)
	Update(ctx context.Context, id string, input model.UserUpdate) (model.User, error)
	Delete(ctx context.Context, id string) error
}

type DocumentAPI interface {
	List(ctx context.Context) ([]model.Document, error)
	Upload(ctx context.Context, filename string, content io.Reader, isCompanyPolicy bool) (model.Document, error)
	Delete(ctx context.Context, id string) error
}

type SettingsAPI interface {
	Get(ctx context.Context) (model.RAGSettings, error)
	Update(ctx context.Context, update model.SettingsUpdate) (model.RAGSettings, error)
}

type ChatAPI interface {
	Send(ctx context.Context, input model.ChatRequest) (model.ChatResponse, error)
}
