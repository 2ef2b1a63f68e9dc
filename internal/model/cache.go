package model

import (
	"context"
	"time"
)

// EphemeralCache is a key-value store with per-key expiry.
// Get returns ErrNotFound for absent or expired keys. Delete reports whether
// the key existed, which lets callers enforce single use.
type EphemeralCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) (bool, error)
}
