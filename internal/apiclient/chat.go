package apiclient

import (
	"context"
	"net/http"

	"rag-console/internal/model"
)

type ChatClient struct {
	c *Client
}

// Send asks one question. The backend keeps no conversation state and none is sent.
func (ch *ChatClient) Send(ctx context.Context, input model.ChatRequest) (model.ChatResponse, error) {
	// The trailing slash matters: the backend redirects /chat and drops the body.
	req, err := jsonRequest("chat.send", http.MethodPost, "/chat/", input)
	if err != nil {
		return model.ChatResponse{}, err
	}

	var resp model.ChatResponse
	if err := ch.c.do(ctx, req, &resp); err != nil {
		return model.ChatResponse{}, err
	}
	if resp.SourceDocuments == nil {
		resp.SourceDocuments = []string{}
	}

	return resp, nil
}
