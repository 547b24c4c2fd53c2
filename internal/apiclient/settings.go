package apiclient

import (
	"context"
	"net/http"

	"rag-console/internal/model"
)

type SettingsClient struct {
	c *Client
}

func (s *SettingsClient) Get(ctx context.Context) (model.RAGSettings, error) {
	var settings model.RAGSettings
	err := s.c.do(ctx, request{op: "settings.get", method: http.MethodGet, path: "/settings"}, &settings)
	return settings, err
}

func (s *SettingsClient) Update(ctx context.Context, update model.SettingsUpdate) (model.RAGSettings, error) {
	req, err := jsonRequest("settings.update", http.MethodPut, "/settings", update)
	if err != nil {
		return model.RAGSettings{}, err
	}

	var settings model.RAGSettings
	err = s.c.do(ctx, req, &settings)
	return settings, err
}
