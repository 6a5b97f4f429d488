package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps a user ID to the directory that holds the user's objects
// in the object store. The hex digest keeps raw IDs out of paths and S3 keys.
func HashUserKey(userID string) string {
	return ContentHash([]byte(userID))
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
