package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rag-console/internal/metrics"
	"rag-console/internal/session"
	"rag-console/pkg/apierror"
)

// maxErrorBody caps how much of a failed response is read looking for detail.
const maxErrorBody = 64 * 1024

// Client talks to the RAG backend. A Client without a token store sends
// anonymous requests; WithTokens returns a copy bound to one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session.TokenStore
	metrics    *metrics.Collector
}

func New(baseURL string, httpClient *http.Client, collector *metrics.Collector) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    collector,
	}
}

func (c *Client) WithTokens(store session.TokenStore) *Client {
	clone := *c
	clone.tokens = store
	return &clone
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Auth() *AuthClient { return &AuthClient{c: c} }
func (c *Client) Users() *UsersClient { return &UsersClient{c: c} }
func (c *Client) Documents() *DocumentsClient { return &DocumentsClient{c: c} }
func (c *Client) Settings() *SettingsClient { return &SettingsClient{c: c} }
func (c *Client) Chat() *ChatClient { return &ChatClient{c: c} }

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	// anonymous requests skip both the bearer header and 401 invalidation.
	anonymous bool
}

func jsonRequest(op string, method string, path string, payload any) (request, error) {
	req := request{op: op, method: method, path: path}
	if payload == nil {
		return req, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("marshal %s request: %w", op, err)
	}

	req.body = bytes.NewReader(body)
	req.contentType = "application/json"
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.op, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if !req.anonymous {
		if err := c.authorize(ctx, httpReq); err != nil {
			return err
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveAPI(req.op, 0, time.Since(started))
		return fmt.Errorf("%s: %w", req.op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.ObserveAPI(req.op, resp.StatusCode, time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.inspectFailure(ctx, req, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.op, err)
	}

	return nil
}

func (c *Client) authorize(ctx context.Context, httpReq *http.Request) error {
	if c.tokens == nil {
		return nil
	}

	token, ok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if ok && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}

// inspectFailure turns a non-2xx response into an APIError. A 401 on an
// authenticated request clears the stored token before returning.
func (c *Client) inspectFailure(ctx context.Context, req request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := apierror.FromUpstream(resp.StatusCode, detailMessage(raw))

	if resp.StatusCode == http.StatusUnauthorized && !req.anonymous && c.tokens != nil {
		if err := c.tokens.RemoveToken(ctx); err != nil {
			slog.Warn("failed to clear token after 401", "operation", req.op, "error", err)
		}
		slog.Info("backend rejected token, session cleared", "operation", req.op)
	}

	return apiErr
}

// detailMessage extracts the backend's {"detail": "..."} message. Structured
// details such as validation error lists are ignored.
func detailMessage(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}

	return strings.TrimSpace(detail)
}
