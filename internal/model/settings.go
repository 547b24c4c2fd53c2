package model

import "slices"

type RAGSettings struct {
	ID           string  `json:"id"`
	ChunkSize    int     `json:"chunk_size"`
	ChunkOverlap int     `json:"chunk_overlap"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	TopK         int     `json:"top_k"`
	ModelName    string  `json:"model_name"`
}

// SettingsUpdate is a partial update; nil fields keep their stored value.
type SettingsUpdate struct {
	ChunkSize    *int     `json:"chunk_size,omitempty"`
	ChunkOverlap *int     `json:"chunk_overlap,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	TopP         *float64 `json:"top_p,omitempty"`
	TopK         *int     `json:"top_k,omitempty"`
	ModelName    *string  `json:"model_name,omitempty"`
}

var ModelOptions = []string{
	"gpt-3.5-turbo",
	"gpt-4",
	"gpt-4-turbo-preview",
	"gpt-4o",
}

// ModelChoices lists ModelOptions plus current when the backend holds a model
// outside that list, so an unchanged form keeps it.
func ModelChoices(current string) []string {
	if current == "" || slices.Contains(ModelOptions, current) {
		return ModelOptions
	}
	return append(slices.Clone(ModelOptions), current)
}

func DefaultRAGSettings() RAGSettings {
	return RAGSettings{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Temperature:  0.7,
		TopP:         1.0,
		TopK:         4,
		ModelName:    "gpt-3.5-turbo",
	}
}

// FullUpdate converts a complete settings record into an update that carries every field.
func (s RAGSettings) FullUpdate() SettingsUpdate {
	chunkSize := s.ChunkSize
	chunkOverlap := s.ChunkOverlap
	temperature := s.Temperature
	topP := s.TopP
	topK := s.TopK
	modelName := s.ModelName

	return SettingsUpdate{
		ChunkSize:    &chunkSize,
		ChunkOverlap: &chunkOverlap,
		Temperature:  &temperature,
		TopP:         &topP,
		TopK:         &topK,
		ModelName:    &modelName,
	}
}
