package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rag-console/internal/metrics"
)

// Metrics records every request under its chi route pattern so ids in paths
// do not explode label cardinality.
func Metrics(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			collector.ObserveHTTP(r.Method, route, wrapped.status, time.Since(started))
		})
	}
}
