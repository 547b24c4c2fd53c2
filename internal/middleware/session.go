package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"rag-console/internal/model"
	"rag-console/internal/session"
)

// Sessions binds the browser's session to the request context.
func Sessions(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := manager.Bind(w, r)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// SessionGuard lets a page through only while the session holds an unexpired
// token. Anything else drops the stale token and redirects to the login page.
// The check is advisory; the backend's 401 remains authoritative.
func SessionGuard(now func() time.Time) func(http.Handler) http.Handler {
	return guard(now, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// RequireSessionAPI is SessionGuard for non-page endpoints such as /ws.
func RequireSessionAPI(now func() time.Time) func(http.Handler) http.Handler {
	return guard(now, func(w http.ResponseWriter, r *http.Request) {
		writeUnauthorized(w, "UNAUTHORIZED", "session expired or missing")
	})
}

func guard(now func() time.Time, reject http.HandlerFunc) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				reject(w, r)
				return
			}

			if !session.Valid(r.Context(), s, now()) {
				if err := s.RemoveToken(r.Context()); err != nil {
					slog.Warn("failed to drop stale session", "error", err)
				}
				reject(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
