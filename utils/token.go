package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSessionToken returns a 64-hex-character random token suitable for
// use as a session identifier.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
