package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh token rows, one per active session.
//
// Rotate must be a single conditional update matched on oldToken, so that of
// two concurrent rotations of the same value only one succeeds; the loser
// gets ErrNotFound.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) (RefreshToken, error)
	GetByToken(ctx context.Context, token string) (RefreshToken, error)
	Rotate(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (RefreshToken, error)
	DeleteAllByToken(ctx context.Context, token string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RefreshToken is a persisted session row.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the row is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
