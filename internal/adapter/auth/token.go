// internal/adapter/auth/token.go

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"huddle/internal/domain/identity"
)

// JWTManager issues and verifies HS256 bearer tokens whose subject is the user ID
type JWTManager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTManager creates a new token manager
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// GenerateToken generates a token for a user. A zero ttl issues a token without expiry.
func (m *JWTManager) GenerateToken(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		Issuer:   m.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return signed, nil
}

// ValidateToken validates a token and returns the user ID
func (m *JWTManager) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", identity.ErrInvalidToken
	}

	if m.issuer != "" && !claims.VerifyIssuer(m.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer %q", identity.ErrInvalidToken, claims.Issuer)
	}

	return claims.Subject, nil
}
