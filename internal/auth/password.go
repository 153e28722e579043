package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
)

// HashPassword creates a bcrypt hash of the password. The salt is
// generated fresh on every call, so two hashes of the same password
// never compare equal as bytes.
func HashPassword(password string, cost int) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	// bcrypt has a 72-byte limit
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// CheckPassword compares a password with its stored hash. Any failure,
// including a malformed hash, reports ErrInvalidPassword rather than
// surfacing bcrypt internals.
func CheckPassword(password string, hash []byte) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// GenerateSecret creates a random 32-byte hex secret, used for session
// and CSRF signing keys when none is configured.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
