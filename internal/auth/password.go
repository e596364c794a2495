package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost - фиксированный work factor bcrypt
const PasswordCost = 10

// MinPasswordLength - минимальная длина пароля
const MinPasswordLength = 8

// HashPassword создает bcrypt хеш пароля.
// Сырой пароль никогда не логируется и не сохраняется.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша.
// Некорректный хеш дает false, а не ошибку.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword проверяет минимальную сложность пароля
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLength
}
