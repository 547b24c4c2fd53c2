package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-console/internal/session"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func unsignedToken(exp time.Time) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, _ := json.Marshal(map[string]any{"sub": "alice", "exp": exp.Unix()})
	return fmt.Sprintf("%s.%s.%s", header, enc.EncodeToString(claims), enc.EncodeToString([]byte("sig")))
}

func guardedServer(t *testing.T, store session.Store) http.Handler {
	t.Helper()

	manager := session.NewManager(store, session.Options{CookieName: "sid", TTL: time.Hour})
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("dashboard"))
	})

	return Sessions(manager)(SessionGuard(func() time.Time { return fixedNow })(page))
}

func TestSessionGuard(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "live", unsignedToken(fixedNow.Add(time.Hour)), time.Hour))
	require.NoError(t, store.Set(ctx, "stale", unsignedToken(fixedNow.Add(-time.Minute)), time.Hour))
	require.NoError(t, store.Set(ctx, "garbage", "not-a-jwt", time.Hour))

	handler := guardedServer(t, store)

	t.Run("valid token renders the page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "live"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dashboard", rec.Body.String())
	})

	for _, id := range []string{"stale", "garbage"} {
		t.Run(id+" token redirects and is dropped", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: "sid", Value: id})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))

			_, err := store.Get(ctx, id)
			assert.Error(t, err)
		})
	}

	t.Run("no cookie redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestRequireSessionAPI(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), session.Options{})
	handler := Sessions(manager)(RequireSessionAPI(nil)(okHandler()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
}
