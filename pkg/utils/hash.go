package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Fingerprint returns a short, stable hex digest of a secret such as a bearer
// token. It is safe to use in cache keys and logs.
func Fingerprint(secret string) string {
	if secret == "" {
		return "anonymous"
	}
	sum := SumSHA256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}
