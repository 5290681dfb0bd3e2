package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "natours/internal/errors"
)

// Claims represents JWT claims. The subject travels as "id", the password
// version of the subject at issue time as "pwv".
type Claims struct {
	UserID          string `json:"id"`
	PasswordVersion int64  `json:"pwv"`
	jwt.RegisteredClaims
}

// SubjectID parses the subject identifier.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// IssuedAtTime returns the issued-at instant, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// JWTService handles session token generation and validation.
type JWTService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewJWTService creates a new JWT service signing with secret. Tokens expire
// lifetime after issuance.
func NewJWTService(secret string, lifetime time.Duration) *JWTService {
	return &JWTService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Lifetime returns the configured token lifetime.
func (s *JWTService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue signs a token for subjectID stamped with its current password version.
func (s *JWTService) Issue(subjectID uuid.UUID, passwordVersion int64) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:          subjectID.String(),
		PasswordVersion: passwordVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims. Any malformed, badly signed
// or expired token yields ErrInvalidToken.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
