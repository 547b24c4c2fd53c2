package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any APIError carrying a 401 status.
var ErrUnauthorized = errors.New("unauthorized")

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	// Upstream is the detail message the backend sent, if any.
	Upstream   string `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e != nil && e.HTTPStatus == http.StatusUnauthorized
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// FromStatus builds an error for a remote response, deriving the code from the status.
func FromStatus(status int, message string) *APIError {
	if message == "" {
		message = http.StatusText(status)
	}

	return New(CodeForStatus(status), message, "", status)
}

// FromUpstream builds the error for a failed backend response. detail is the
// backend's own message and may be empty.
func FromUpstream(status int, detail string) *APIError {
	err := FromStatus(status, detail)
	err.Upstream = detail
	return err
}

// UpstreamDetail returns the backend's message carried by err, or "".
func UpstreamDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Upstream
	}

	return ""
}

func CodeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case status == http.StatusForbidden:
		return "FORBIDDEN"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusConflict:
		return "CONFLICT"
	case status == http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case status == http.StatusUnprocessableEntity:
		return "VALIDATION_FAILED"
	case status == http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case status >= 500:
		return "UPSTREAM_ERROR"
	case status >= 400:
		return "BAD_REQUEST"
	default:
		return "UNEXPECTED_STATUS"
	}
}
