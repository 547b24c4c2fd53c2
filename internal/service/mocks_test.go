package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"rag-console/internal/model"
)

type mockAuthAPI struct{ mock.Mock }

func (m *mockAuthAPI) Login(ctx context.Context, username string, password string) (model.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(model.TokenResponse), args.Error(1)
}

func (m *mockAuthAPI) CurrentUser(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

type mockUserAPI struct{ mock.Mock }

func (m *mockUserAPI) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserAPI) Create(ctx context.Context, input model.UserCreate) (model.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserAPI) Update(ctx context.Context, id string, input model.UserUpdate) (model.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockDocumentAPI struct{ mock.Mock }

func (m *mockDocumentAPI) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	documents, _ := args.Get(0).([]model.Document)
	return documents, args.Error(1)
}

func (m *mockDocumentAPI) Upload(ctx context.Context, filename string, content io.Reader, isCompanyPolicy bool) (model.Document, error) {
	args := m.Called(ctx, filename, content, isCompanyPolicy)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *mockDocumentAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSettingsAPI struct{ mock.Mock }

func (m *mockSettingsAPI) Get(ctx context.Context) (model.RAGSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.RAGSettings), args.Error(1)
}

func (m *mockSettingsAPI) Update(ctx context.Context, update model.SettingsUpdate) (model.RAGSettings, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(model.RAGSettings), args.Error(1)
}

type mockChatAPI struct{ mock.Mock }

func (m *mockChatAPI) Send(ctx context.Context, input model.ChatRequest) (model.ChatResponse, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.ChatResponse), args.Error(1)
}
