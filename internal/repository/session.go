package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vercart/storefront/internal/domain/identity"
)

const (
	getSessionByHashSQL = `SELECT token_hash, user_id, email, name
	FROM sessions WHERE token_hash = $1 AND active = TRUE AND expires_at > now()`

	upsertSessionSQL = `INSERT INTO sessions
		(token_hash, user_id, email, name, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, TRUE, now(), $5)
		ON CONFLICT (token_hash) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			active = TRUE,
			expires_at = EXCLUDED.expires_at`
)

var _ identity.Repository = (*SessionRepository)(nil)

// SessionRepository provides session lookups backed by PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a SessionRepository that uses the given pool.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// FindByTokenHash looks up an active, unexpired session by its HMAC-SHA256
// token hash.
func (r *SessionRepository) FindByTokenHash(ctx context.Context, hash string) (*identity.Session, error) {
	var s identity.Session
	err := r.pool.QueryRow(ctx, getSessionByHashSQL, hash).Scan(
		&s.TokenHash, &s.UserID, &s.Email, &s.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", err)
		}
		return nil, fmt.Errorf("finding session by hash: %w", err)
	}
	return &s, nil
}

// Upsert writes a session row. The sign-in flow and the seed tool both use
// it with a pre-hashed token.
func (r *SessionRepository) Upsert(ctx context.Context, s identity.Session, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, upsertSessionSQL,
		s.TokenHash, s.UserID, s.Email, s.Name, expiresAt)
	if err != nil {
		return fmt.Errorf("upserting session for user %q: %w", s.UserID, err)
	}
	return nil
}
