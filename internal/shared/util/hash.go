package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns a filesystem-safe identifier for a session or owner ID.
func HashKey(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
