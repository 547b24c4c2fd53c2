package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"rag-console/internal/event"
	"rag-console/internal/model"
)

const (
	SettingsSavedMessage = "Settings saved successfully!"
	SettingsErrorMessage = "Error saving settings"
)

type SettingsService struct {
	api SettingsAPI
	bus event.Bus
}

func NewSettingsService(api SettingsAPI, bus event.Bus) *SettingsService {
	return &SettingsService{api: api, bus: bus}
}

func (s *SettingsService) Get(ctx context.Context) (model.RAGSettings, error) {
	return s.api.Get(ctx)
}

// Save sends every field of update and returns what the backend stored.
func (s *SettingsService) Save(ctx context.Context, update model.SettingsUpdate) (model.RAGSettings, error) {
	settings, err := s.api.Update(ctx, update)
	if err != nil {
		return model.RAGSettings{}, err
	}

	slog.Info("rag settings updated", "model", settings.ModelName, "chunk_size", settings.ChunkSize, "top_k", settings.TopK)
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeSettingsChanged, "updated", settings.ID))
	}

	return settings, nil
}

// ParseSettingsForm reads all six settings fields and checks them against the
// ranges the settings form offers.
func ParseSettingsForm(form url.Values) (model.RAGSettings, error) {
	var settings model.RAGSettings
	var err error

	if settings.ChunkSize, err = formInt(form, "chunk_size", 100, 5000); err != nil {
		return settings, err
	}
	if settings.ChunkOverlap, err = formInt(form, "chunk_overlap", 0, 1000); err != nil {
		return settings, err
	}
	if settings.Temperature, err = formFloat(form, "temperature", 0, 2); err != nil {
		return settings, err
	}
	if settings.TopP, err = formFloat(form, "top_p", 0, 1); err != nil {
		return settings, err
	}
	if settings.TopK, err = formInt(form, "top_k", 1, 20); err != nil {
		return settings, err
	}

	// the backend stores model_name as free text
	settings.ModelName = strings.TrimSpace(form.Get("model_name"))
	if settings.ModelName == "" {
		return settings, fmt.Errorf("%w: model_name is required", model.ErrInvalidInput)
	}

	return settings, nil
}

func formInt(form url.Values, key string, low int, high int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", model.ErrInvalidInput, key)
	}
	if v < low || v > high {
		return v, fmt.Errorf("%w: %s must be between %d and %d", model.ErrInvalidInput, key, low, high)
	}

	return v, nil
}

func formFloat(form url.Values, key string, low float64, high float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(form.Get(key)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", model.ErrInvalidInput, key)
	}
	if v < low || v > high {
		return v, fmt.Errorf("%w: %s must be between %g and %g", model.ErrInvalidInput, key, low, high)
	}

	return v, nil
}
