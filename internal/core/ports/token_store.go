package ports

import (
	"context"
	"errors"
	"time"
)

// ErrTokenNotFound is returned by TokenStore.Get when no token is stored.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore persists the bearer token of each browser session. It is the
// only durable state the gateway keeps.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	// Set stores token for sessionID. A ttl <= 0 means the store default.
	Set(ctx context.Context, sessionID, token string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
