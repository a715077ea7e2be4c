package utils

import (
	"crypto/rand"
	"encoding/hex"
)

const sessionIDBytes = 24

// GenerateSessionID returns a random session id: ses_ followed by 48 hex chars.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ses_" + hex.EncodeToString(b), nil
}
