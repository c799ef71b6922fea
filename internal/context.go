package internal

import (
	"context"
	"time"

	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
)

type ctxKey string

const ContextUserKey ctxKey = "principal"

// User is the authenticated principal attached to a request.
type User struct {
	ID    int64
	Email string
	Role  coreuser.Role
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
