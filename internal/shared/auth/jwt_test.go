package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	token, err := issuer.Sign("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("other", time.Hour)
	token, _ := other.Sign("user-1", "")

	expired, _ := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Sign("user-1", "")

	cases := map[string]string{
		"garbage":     "not-a-token",
		"wrong key":   token,
		"expired":     old,
		"empty token": "",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.Verify(raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
