package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds at most one bearer token. Setting a token overwrites the previous one.
type TokenStore interface {
	Token(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
}

// IsTokenValid decodes the exp claim and reports whether it lies after now.
// The signature is never verified: this only decides what the UI shows, the
// backend stays the authority on whether a token is accepted.
func IsTokenValid(token string, now time.Time) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.After(now)
}

// Valid reports whether the store currently holds an unexpired token.
func Valid(ctx context.Context, store TokenStore, now time.Time) bool {
	token, ok, err := store.Token(ctx)
	if err != nil || !ok {
		return false
	}

	return IsTokenValid(token, now)
}

// MemoryTokenStore is a process-local single-slot TokenStore.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != "", nil
}

func (s *MemoryTokenStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
