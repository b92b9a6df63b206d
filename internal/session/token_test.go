package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()})

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatal("expected expiry to be readable")
	}
	if !got.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, got)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-1"})

	if _, ok := TokenExpiry(token); ok {
		t.Error("expected no expiry for token without exp claim")
	}
}

func TestTokenExpiry_NotAJWT(t *testing.T) {
	if _, ok := TokenExpiry("opaque-session-token"); ok {
		t.Error("expected no expiry for non-JWT token")
	}
}

func TestTokenExpired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "future expiry",
			token: signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
			want:  false,
		},
		{
			name:  "past expiry",
			token: signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}),
			want:  true,
		},
		{
			name:  "no expiry is kept",
			token: "opaque-session-token",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenExpired(tt.token); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
