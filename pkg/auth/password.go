package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// ResetCost is the bcrypt cost used for passwords set through a reset.
const ResetCost = 12

var ErrPasswordTooShort = errors.New("password too short")

// MinPasswordLength counts characters, not bytes.
const MinPasswordLength = 8

// HashPassword rejects passwords shorter than MinPasswordLength before
// hashing.
func HashPassword(password string, cost int) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
