package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rag-console/internal/model"
)

// pgxExecutor is the part of pgxpool.Pool the repository needs.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionRepository stores console sessions in Postgres. It satisfies session.Store.
type SessionRepository struct {
	pool pgxExecutor
	now  func() time.Time
}

func NewSessionRepository(pool pgxExecutor) *SessionRepository {
	return &SessionRepository{pool: pool, now: time.Now}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (string, error) {
	var token string
	err := r.pool.QueryRow(ctx,
		`SELECT token FROM console_sessions
		 WHERE id = $1 AND expires_at > $2`, id, r.now().UTC()).Scan(&token)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return token, nil
}

func (r *SessionRepository) Set(ctx context.Context, id string, token string, ttl time.Duration) error {
	now := r.now().UTC()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO console_sessions (id, token, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		id, token, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at <= $1`, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("clean expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
