package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateCode returns a 6-character lowercase hex one-time code
// (3 random bytes, hex-encoded).
func GenerateCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return hex.EncodeToString(b), nil
}
