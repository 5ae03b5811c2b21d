package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// RevokedTokenRepository persists the token denylist. Rows are inserted
// on revocation and never removed.
type RevokedTokenRepository interface {
	Create(ctx context.Context, token *domain.RevokedToken) error
	Exists(ctx context.Context, tokenStr string) (bool, error)
}

type revokedTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRevokedTokenRepository returns a Postgres-backed implementation.
func NewRevokedTokenRepository(pool *pgxpool.Pool) RevokedTokenRepository {
	return &revokedTokenRepository{pool: pool}
}

func (r *revokedTokenRepository) Create(ctx context.Context, token *domain.RevokedToken) error {
	const q = `
        INSERT INTO revoked_tokens (user_id, token)
        VALUES ($1, $2)
        ON CONFLICT (token) DO NOTHING
        RETURNING id, revoked_at`

	err := r.pool.QueryRow(ctx, q, token.UserID, token.Token).Scan(&token.ID, &token.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already revoked; revoking twice is a no-op.
		return nil
	}
	return err
}

func (r *revokedTokenRepository) Exists(ctx context.Context, tokenStr string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token=$1)`, tokenStr).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
