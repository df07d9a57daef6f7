package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshaling public key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	return priv, string(pemBytes)
}

func signToken(t *testing.T, priv *rsa.PrivateKey, subject string, expires time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestAuthenticator_ValidToken(t *testing.T) {
	priv, pub := testKeyPair(t)
	auth, err := NewAuthenticator(pub)
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	var gotID string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, priv, "user_abc", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	auth.Middleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !gotOK || gotID != "user_abc" {
		t.Errorf("UserID = %q, %v", gotID, gotOK)
	}
}

func TestAuthenticator_NoTokenPassesThrough(t *testing.T) {
	_, pub := testKeyPair(t)
	auth, err := NewAuthenticator(pub)
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := UserID(r.Context()); ok {
			t.Error("anonymous request must not carry an identity")
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/api/receipts/parse", nil)
	rec := httptest.NewRecorder()

	auth.Middleware(next).ServeHTTP(rec, req)

	if !called {
		t.Error("request without a token must reach the handler")
	}
}

func TestAuthenticator_RejectsBadTokens(t *testing.T) {
	priv, pub := testKeyPair(t)
	otherPriv, _ := testKeyPair(t)
	auth, err := NewAuthenticator(pub)
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"expired", "Bearer " + signToken(t, priv, "user_abc", time.Now().Add(-time.Hour))},
		{"wrong key", "Bearer " + signToken(t, otherPriv, "user_abc", time.Now().Add(time.Hour))},
		{"empty subject", "Bearer " + signToken(t, priv, "", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("invalid token must not reach the handler")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			auth.Middleware(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestNewAuthenticator_BadKey(t *testing.T) {
	if _, err := NewAuthenticator("not a pem key"); err == nil {
		t.Error("expected error for malformed public key")
	}
}
