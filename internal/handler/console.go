package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rag-console/internal/apiclient"
	"rag-console/internal/event"
	"rag-console/internal/metrics"
	"rag-console/internal/middleware"
	"rag-console/internal/model"
	"rag-console/internal/session"
	"rag-console/internal/view"
	"rag-console/pkg/apierror"
)

const genericErrorMessage = "Something went wrong. Please try again."

// Console carries what every page handler shares.
type Console struct {
	API               *apiclient.Client
	Bus               event.Bus
	Views             *view.Renderer
	Metrics           *metrics.Collector
	AllowedExtensions []string
	MaxUploadSize     int64
	Now               func() time.Time
}

func (c *Console) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// tokens returns the session bound by the Sessions middleware.
func tokens(r *http.Request) session.TokenStore {
	if s, ok := session.FromContext(r.Context()); ok {
		return s
	}
	return session.NewMemoryTokenStore()
}

// client returns the backend client acting for this request's session.
func (c *Console) client(r *http.Request) *apiclient.Client {
	return c.API.WithTokens(tokens(r))
}

func (c *Console) render(w http.ResponseWriter, status int, name string, page view.Page) {
	c.Views.Render(w, status, name, page)
}

// handleUnauthorized ends the request with a redirect to the login page when
// err is a backend 401. The client has already dropped the token by then.
func handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, model.ErrUnauthorized) {
		return false
	}

	slog.Info("session rejected by backend, redirecting to login",
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
	)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// errorMessage is the inline message a page shows for err.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}

	if detail := apierror.UpstreamDetail(err); detail != "" {
		return detail
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return fmt.Sprintf("File is too large. The limit is %s.", humanBytes(maxBytes.Limit))
	case errors.Is(err, model.ErrUnsupportedFileType):
		return "Unsupported file type. Allowed types are PDF, DOCX, DOC and TXT."
	case errors.Is(err, model.ErrInvalidInput):
		if _, after, ok := strings.Cut(err.Error(), ": "); ok {
			return capitalize(after) + "."
		}
		return "Invalid input."
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return genericErrorMessage
}

// statusFor picks the response status for a page rendered with an error.
func statusFor(err error) int {
	var apiErr *apierror.APIError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.HTTPStatus >= 400 && apiErr.HTTPStatus < 500:
		return apiErr.HTTPStatus
	default:
		return http.StatusBadGateway
	}
}

func logFailure(r *http.Request, action string, err error) {
	slog.Warn(action+" failed",
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"error", err,
	)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func humanBytes(n int64) string {
	const mib = 1024 * 1024
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
