package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rag-console/internal/event"
	"rag-console/internal/model"
)

func validSettingsForm() url.Values {
	return url.Values{
		"chunk_size":    {"1200"},
		"chunk_overlap": {"150"},
		"temperature":   {"0.3"},
		"top_p":         {"0.9"},
		"top_k":         {"6"},
		"model_name":    {"gpt-4o"},
	}
}

func TestParseSettingsForm(t *testing.T) {
	settings, err := ParseSettingsForm(validSettingsForm())
	require.NoError(t, err)

	assert.Equal(t, 1200, settings.ChunkSize)
	assert.Equal(t, 150, settings.ChunkOverlap)
	assert.InDelta(t, 0.3, settings.Temperature, 1e-9)
	assert.InDelta(t, 0.9, settings.TopP, 1e-9)
	assert.Equal(t, 6, settings.TopK)
	assert.Equal(t, "gpt-4o", settings.ModelName)
}

func TestParseSettingsForm_KeepsUnlistedModel(t *testing.T) {
	form := validSettingsForm()
	form.Set("model_name", "gpt-4o-mini")

	settings, err := ParseSettingsForm(form)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", settings.ModelName)
}

func TestParseSettingsForm_Ranges(t *testing.T) {
	cases := map[string][2]string{
		"chunk size below minimum": {"chunk_size", "99"},
		"chunk size above maximum": {"chunk_size", "5001"},
		"overlap negative":         {"chunk_overlap", "-1"},
		"temperature too hot":      {"temperature", "2.5"},
		"top p above one":          {"top_p", "1.01"},
		"top k zero":               {"top_k", "0"},
		"top k not a number":       {"top_k", "four"},
		"model missing":            {"model_name", "  "},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			form := validSettingsForm()
			form.Set(tc[0], tc[1])

			_, err := ParseSettingsForm(form)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SaveSendsAllFields(t *testing.T) {
	api := new(mockSettingsAPI)
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	settings, err := ParseSettingsForm(validSettingsForm())
	require.NoError(t, err)

	api.On("Update", mock.Anything, mock.MatchedBy(func(u model.SettingsUpdate) bool {
		return u.ChunkSize != nil && u.ChunkOverlap != nil && u.Temperature != nil &&
			u.TopP != nil && u.TopK != nil && u.ModelName != nil && *u.ModelName == "gpt-4o"
	})).Return(model.RAGSettings{ID: "s1", ModelName: "gpt-4o"}, nil)

	saved, err := NewSettingsService(api, bus).Save(context.Background(), settings.FullUpdate())
	require.NoError(t, err)
	assert.Equal(t, "s1", saved.ID)
	assert.Equal(t, event.TypeSettingsChanged, (<-events).Type)
}
