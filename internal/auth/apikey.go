package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
)

// API keys are 32 random bytes rendered as lowercase base32 — a 52-char
// URL-safe string. The database stores only the hex SHA-256 of the key;
// a leaked database does not leak usable keys. SHA-256 (not bcrypt) is
// fine here because the input is 256 bits of randomness, not a human
// password — there is nothing to brute-force.

var keyEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// GenerateAPIKey returns a new random API key in its plaintext form.
// Callers show it to the user once and store only HashAPIKey(key).
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating api key: %w", err)
	}
	return keyEncoding.EncodeToString(buf), nil
}

// HashAPIKey returns the lowercase hex SHA-256 digest of a key, the form
// persisted and used for lookups.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
