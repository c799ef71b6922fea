package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	repo           PrincipalRepository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(repo PrincipalRepository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// NewJWTTokenGenerator returns an HS256 generator. A non-positive ttl falls
// back to one hour.
func NewJWTTokenGenerator(secret string, accessTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: accessTTL,
		Issuer:         defaultIssuer,
	}
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, internal.ErrNotAuthenticated
	}
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolvePrincipal reloads the user named by the token so the role and the
// account's existence are current.
func (s *Service) ResolvePrincipal(ctx context.Context, claims *Claims) (*internal.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, internal.ErrInvalidToken
	}

	principal, err := s.repo.GetPrincipalByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			// The signature is valid but the account is gone. The principal
			// keeps the lowest role so each operation reports the missing user.
			s.logger.WarnContext(ctx, "token refers to unknown user", "email", claims.Email)
			return &internal.User{ID: claims.UserID, Email: claims.Email, Role: coreuser.RoleStaff}, nil
		}
		s.logger.ErrorContext(ctx, "failed to resolve principal", "email", claims.Email, "error", err)
		return nil, internal.NewInternalError(err)
	}

	if claims.UserID != 0 && claims.UserID != principal.ID {
		s.logger.WarnContext(ctx, "token user id does not match stored user",
			"claim_user_id", claims.UserID,
			"user_id", principal.ID)
		return nil, internal.ErrInvalidToken
	}

	return principal, nil
}

// IssueToken signs an access token for an existing user. It backs the
// development token command; there is no login endpoint.
func (s *Service) IssueToken(ctx context.Context, email string) (string, error) {
	principal, err := s.repo.GetPrincipalByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	return s.tokenGenerator.GenerateAccessToken(principal.ID, principal.Email, principal.Role)
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string, role coreuser.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
