package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	resetTokenLength   = 32
	resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateResetToken draws 32 alphanumeric characters from crypto/rand.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenLength)
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate reset token: %w", err)
		}
		buf[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// GenerateSessionToken returns 32 random bytes hex encoded.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
