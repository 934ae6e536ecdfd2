package auth

import (
	"errors"
	"testing"
	"time"

	"huddle/internal/domain/identity"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("testsecret", "huddle")

	token, err := m.GenerateToken("u1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %s", userID)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("testsecret", "huddle")

	other, _ := NewJWTManager("othersecret", "huddle").GenerateToken("u1", time.Hour)
	wrongIssuer, _ := NewJWTManager("testsecret", "elsewhere").GenerateToken("u1", time.Hour)

	expiredManager := NewJWTManager("testsecret", "huddle")
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredManager.GenerateToken("u1", time.Hour)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ValidateToken(token); !errors.Is(err, identity.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestGenerateRequiresUser(t *testing.T) {
	if _, err := NewJWTManager("s", "").GenerateToken("", 0); err == nil {
		t.Fatal("expected error for empty user ID")
	}
}
