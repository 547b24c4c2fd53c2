package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag-console/internal/model"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds browser cookies to server-side token records.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewManager(store Store, opts Options) *Manager {
	if strings.TrimSpace(opts.CookieName) == "" {
		opts.CookieName = "rag_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	return &Manager{
		store:      store,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// Bind returns the session carried by the request cookie. The session writes
// cookie changes to w, so it must be used before the response header is sent.
func (m *Manager) Bind(w http.ResponseWriter, r *http.Request) *Session {
	s := &Session{manager: m, w: w}
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		s.id = strings.TrimSpace(cookie.Value)
	}

	return s
}

// Session is the per-request view of one browser session. It implements TokenStore.
type Session struct {
	manager *Manager
	w       http.ResponseWriter
	id      string
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Token(ctx context.Context) (string, bool, error) {
	if s.id == "" {
		return "", false, nil
	}

	token, err := s.manager.store.Get(ctx, s.id)
	if errors.Is(err, model.ErrSessionNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return token, token != "", nil
}

// SetToken stores token under a fresh session id, discarding the previous record.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if s.id != "" {
		if err := s.manager.store.Delete(ctx, s.id); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
	}

	id := uuid.NewString()
	if err := s.manager.store.Set(ctx, id, token, s.manager.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	s.id = id
	http.SetCookie(s.w, s.manager.cookie(id, int(s.manager.ttl.Seconds())))
	return nil
}

func (s *Session) RemoveToken(ctx context.Context) error {
	if s.id == "" {
		return nil
	}

	id := s.id
	s.id = ""
	http.SetCookie(s.w, s.manager.cookie("", -1))

	if err := s.manager.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey string

const sessionContextKey contextKey = "console_session"

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok
}
