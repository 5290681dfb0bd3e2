package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "natours/internal/errors"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	id := uuid.New()

	token, err := svc.Issue(id, 4)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, id, subject)
	assert.Equal(t, int64(4), claims.PasswordVersion)
	assert.WithinDuration(t, time.Now(), claims.IssuedAtTime(), 2*time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)
}

func TestJWTService_VerifyRejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	id := uuid.New()

	expired := NewJWTService("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(id, 0)
	require.NoError(t, err)

	otherKey, err := NewJWTService("other-secret", time.Hour).Issue(id, 0)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: id.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: otherKey},
		{name: "unsigned", token: noneToken},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.Equal(t, apperrors.ErrInvalidToken, err, "library detail must not reach the caller")
			assert.Nil(t, claims)
		})
	}
}

func TestResetToken(t *testing.T) {
	plain, hash, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, ResetTokenLength*2)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, plain, hash)
	assert.Equal(t, hash, HashResetToken(plain))

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
