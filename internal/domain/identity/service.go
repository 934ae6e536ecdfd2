// internal/domain/identity/service.go

package identity

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken is returned when a bearer credential cannot be verified
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager handles authentication tokens. Sessions are issued by the
// auth service; this subsystem only needs to verify them.
type TokenManager interface {
	// GenerateToken generates a token for a user
	GenerateToken(userID string, ttl time.Duration) (string, error)

	// ValidateToken validates a token and returns the user ID
	ValidateToken(token string) (string, error)
}

type callerKey struct{}

// WithCaller returns a context carrying the authenticated user ID
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFromContext returns the authenticated user ID, if any
func CallerFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(callerKey{}).(string)
	return userID, ok && userID != ""
}
