package interceptors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserIDKey carries the authenticated user id in the request context.
const UserIDKey contextKey = "user_id"

var (
	errMissingToken = errors.New("authentication required")
	errInvalidToken = errors.New("invalid or expired token")
)

// Claims are the access token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for userID.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// NewAuthInterceptor requires a bearer token on every procedure except the
// optional ones, where a missing token leaves the request anonymous. A
// present but invalid token is always rejected.
func NewAuthInterceptor(secret []byte, optionalProcedures ...string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			optional := slices.Contains(optionalProcedures, req.Spec().Procedure)

			raw := req.Header().Get("Authorization")
			if raw == "" {
				if optional {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, errMissingToken)
			}

			tokenString, ok := strings.CutPrefix(raw, "Bearer ")
			if !ok || len(secret) == 0 {
				return nil, connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
			}
			claims, err := ParseToken(secret, strings.TrimSpace(tokenString))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			return next(ctx, req)
		}
	}
}

// GetUserIDFromContext returns the user id set by the auth interceptor.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
