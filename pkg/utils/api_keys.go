package utils

import (
	"crypto/rand"
	"encoding/base64"
)

const apiKeyPrefix = "sk_"

// GenerateRandomKey returns a URL-safe API key carrying length bytes of entropy.
func GenerateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}
