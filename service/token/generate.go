package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const tokenBytes = 32

// Generate mints a cryptographically unpredictable opaque token. The value
// carries no structure; it cannot be derived from an instance identifier.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DigestOf returns the digest under which a token record is stored. Stores
// hold the digest only, so leaked records cannot be replayed as tokens.
func DigestOf(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
