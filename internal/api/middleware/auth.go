package middleware

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const userIDKey contextKey = "clerkUserID"

// Authenticator verifies session tokens issued by the identity provider.
// Authentication is optional at the middleware level: endpoints that need
// an identity check for it themselves via UserID, so anonymous flows (guest
// receipt parsing) keep working.
type Authenticator struct {
	publicKey *rsa.PublicKey
}

// NewAuthenticator parses the provider's PEM-encoded RSA public key.
func NewAuthenticator(pemKey string) (*Authenticator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("NewAuthenticator: parse public key: %w", err)
	}
	return &Authenticator{publicKey: key}, nil
}

// Middleware extracts and verifies a Bearer token when one is present.
// A valid token puts the provider user id (the token subject) into the
// request context; an invalid token is rejected with 401; no token passes
// through unauthenticated.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.publicKey, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated provider user id, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given provider user id.
// Intended for tests exercising authenticated handlers directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
