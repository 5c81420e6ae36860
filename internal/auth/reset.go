package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// resetSecretBytes is the amount of randomness in a reset token.
const resetSecretBytes = 32

// GenerateResetSecret returns 32 random bytes encoded as 64 hex characters.
func GenerateResetSecret() (string, error) {
	b := make([]byte, resetSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashResetToken returns the hex SHA-256 digest under which a raw reset
// token is stored.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
