package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomToken генерирует непрозрачный случайный токен
// (верификация, сброс пароля, сессии): 32 байта из crypto/rand,
// hex-представление.
func NewRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
