package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateSignature creates HMAC-SHA256 signature
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature validates HMAC-SHA256 signature
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SignValue returns value followed by its signature, for cookies.
func SignValue(value, secret string) string {
	return value + "." + GenerateSignature([]byte(value), secret)
}

// VerifySignedValue returns the value of a SignValue output.
func VerifySignedValue(signed, secret string) (string, error) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 {
		return "", ErrInvalidSignedValue
	}
	value, sig := signed[:i], signed[i+1:]
	if !VerifySignature([]byte(value), sig, secret) {
		return "", ErrInvalidSignedValue
	}
	return value, nil
}
