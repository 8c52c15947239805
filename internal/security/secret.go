package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const secretLength = 32

// GenerateSecret returns a random hex-encoded 32-byte secret.
func GenerateSecret() (string, error) {
	b := make([]byte, secretLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// KeyFromSecret turns the configured secret into a 32-byte CSRF key. A
// 64-character hex secret is used as is; anything else is hashed.
func KeyFromSecret(secret string) []byte {
	if key, err := hex.DecodeString(secret); err == nil && len(key) == secretLength {
		return key
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}
