package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rag-console/internal/metrics"
	"rag-console/internal/model"
)

type ChatMode string

const (
	ChatModeDocument ChatMode = "document"
	ChatModePolicy   ChatMode = "policy"
)

// maxTranscript bounds how many messages a posted transcript may carry.
const maxTranscript = 200

type ChatService struct {
	api     ChatAPI
	metrics *metrics.Collector
}

func NewChatService(api ChatAPI, collector *metrics.Collector) *ChatService {
	return &ChatService{api: api, metrics: collector}
}

// Ask appends the user's question and the reply to transcript. A blank query,
// or a document chat with no document picked, returns transcript unchanged.
// Backend failures become the fallback reply, except 401 which is returned so
// the caller can end the session.
func (s *ChatService) Ask(ctx context.Context, mode ChatMode, documentID string, query string, transcript []model.ChatMessage) ([]model.ChatMessage, error) {
	query = strings.TrimSpace(query)
	documentID = strings.TrimSpace(documentID)

	if query == "" {
		return transcript, nil
	}
	if mode == ChatModeDocument && documentID == "" {
		return transcript, nil
	}

	out := make([]model.ChatMessage, 0, len(transcript)+2)
	out = append(out, transcript...)
	out = append(out, model.ChatMessage{Role: model.ChatRoleUser, Content: query})

	req := model.ChatRequest{Query: query, UseCompanyPolicy: mode == ChatModePolicy}
	if mode == ChatModeDocument {
		req.DocumentID = &documentID
	}

	resp, err := s.api.Send(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return out, err
		}

		slog.Warn("chat request failed", "mode", mode, "document_id", documentID, "error", err)
		s.metrics.ChatFallback(string(mode))
		return append(out, model.ChatMessage{Role: model.ChatRoleAssistant, Content: model.ChatFallbackMessage}), nil
	}

	return append(out, model.ChatMessage{
		Role:    model.ChatRoleAssistant,
		Content: resp.Answer,
		Sources: resp.SourceDocuments,
	}), nil
}

// EncodeTranscript serialises a transcript for the chat form's hidden field.
func EncodeTranscript(transcript []model.ChatMessage) string {
	if len(transcript) == 0 {
		return "[]"
	}

	raw, err := json.Marshal(transcript)
	if err != nil {
		return "[]"
	}

	return string(raw)
}

// DecodeTranscript parses the hidden field. Only user and assistant messages
// are kept and only the most recent maxTranscript of them.
func DecodeTranscript(raw string) ([]model.ChatMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []model.ChatMessage{}, nil
	}

	var decoded []model.ChatMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed chat transcript", model.ErrInvalidInput)
	}

	transcript := make([]model.ChatMessage, 0, len(decoded))
	for _, msg := range decoded {
		if msg.Role != model.ChatRoleUser && msg.Role != model.ChatRoleAssistant {
			continue
		}
		transcript = append(transcript, msg)
	}

	if len(transcript) > maxTranscript {
		transcript = transcript[len(transcript)-maxTranscript:]
	}

	return transcript, nil
}
