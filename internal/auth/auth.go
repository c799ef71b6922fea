package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

const defaultIssuer = "leave-management"

// Claims are the JWT claims of an access token. Role is informational: the
// principal's role is always reloaded from the user store.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator signs and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, email string, role coreuser.Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// PrincipalRepository resolves the current state of a user by email.
type PrincipalRepository interface {
	GetPrincipalByEmail(ctx context.Context, email string) (*internal.User, error)
}

type ServiceAPI interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
	ResolvePrincipal(ctx context.Context, claims *Claims) (*internal.User, error)
	IssueToken(ctx context.Context, email string) (string, error)
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	Issuer         string
}
