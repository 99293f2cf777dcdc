package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey int

const (
	userIDKey contextKey = iota
	demoKey
)

// Middleware validates an externally issued HS256 bearer token and stores the
// caller identity in the request context. Token issuance (login, sessions)
// happens outside this service; we only consume the claims.
//
// Expected claims: user_id (number, required), demo (bool, optional, selects
// the demo partition).
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx, err := authenticate(r, secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Optional authenticates the caller when a bearer token is present and passes
// the request through anonymously when it is not. Used on public reads that
// show more to an authenticated owner. A token that is supplied but invalid
// is still rejected.
func Optional(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r, secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate parses the bearer token and returns a request context carrying
// the caller identity.
func authenticate(r *http.Request, secret string) (context.Context, error) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("missing or invalid user_id claim")
	}

	ctx := context.WithValue(r.Context(), userIDKey, int64(rawID))
	if demo, ok := claims["demo"].(bool); ok && demo {
		ctx = context.WithValue(ctx, demoKey, true)
	}
	return ctx, nil
}

// UserID returns the authenticated caller's id, if any.
func UserID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(userIDKey).(int64)
	return id, ok
}

// IsDemo reports whether the token selected the demo partition.
func IsDemo(r *http.Request) bool {
	demo, ok := r.Context().Value(demoKey).(bool)
	return ok && demo
}
