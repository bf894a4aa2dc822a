package repository

import (
	"context"
	"time"
)

// StateStore abstracts ephemeral key-value state: refresh-token allow-list
// entries and single-use setup-token marks.
// Implementations: Redis (production) or in-memory (local dev / tests).
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// SetNX stores the value only if the key is absent; returns whether it won.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}
