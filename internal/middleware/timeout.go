package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds page handlers. It buffers the response, so it must not wrap
// the websocket route.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	message := "The request took too long. Please try again."

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
