package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResetTokenLength is the number of random bytes behind a reset token.
const ResetTokenLength = 32

// GenerateResetToken returns a fresh reset token and the hash to persist.
// Only the hash is stored; the plain value goes to the user by email.
func GenerateResetToken() (plain string, hash string, err error) {
	randomBytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plain = hex.EncodeToString(randomBytes)
	return plain, HashResetToken(plain), nil
}

// HashResetToken computes the SHA256 hash of a reset token for lookup.
func HashResetToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
