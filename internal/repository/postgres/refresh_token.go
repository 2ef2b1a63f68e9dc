package postgres

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/reelscore-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository stores only a SHA-256 digest of each token value.
type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) (model.RefreshToken, error) {
	const query = `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING created_at, updated_at
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		token.ID, token.UserID, hashToken(token.Token), token.ExpiresAt,
	).Scan(&token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return token, nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	const query = `
        SELECT id, user_id, expires_at, created_at, updated_at
        FROM refresh_tokens WHERE token_hash = $1
    `
	rt := model.RefreshToken{Token: token}
	err := r.db.QueryRow(ctx, query, hashToken(token)).Scan(
		&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

// Rotate replaces the value and expiry of the row currently holding oldToken.
// The match is on the old value, so a racing rotation that already replaced
// it leaves nothing to update and gets model.ErrNotFound.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (model.RefreshToken, error) {
	const query = `
        UPDATE refresh_tokens SET token_hash = $2, expires_at = $3, updated_at = NOW()
        WHERE token_hash = $1
        RETURNING id, user_id, expires_at, created_at, updated_at
    `
	rt := model.RefreshToken{Token: newToken}
	err := r.db.QueryRow(ctx, query, hashToken(oldToken), hashToken(newToken), newExpiresAt).Scan(
		&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteAllByToken(ctx context.Context, token string) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	cmd, err := r.db.Exec(ctx, query, hashToken(token))
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < $1`

	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
