package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Store keeps the current token per user. Logout deletes the entry, which
// revokes the token server-side before it expires.
type Store interface {
	Save(ctx context.Context, userID uint, token string, ttl time.Duration) error
	Get(ctx context.Context, userID uint) (string, error)
	Delete(ctx context.Context, userID uint) error
}
