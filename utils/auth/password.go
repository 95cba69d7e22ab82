package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("password does not match")
)

const (
	// DefaultCost is the bcrypt cost used for registration and password changes
	DefaultCost = 12
	// MinPasswordLength is enforced on registration and password change
	MinPasswordLength = 8
)

// HashPassword applies the account password policy and returns the bcrypt
// hash stored on the user row
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// VerifyPassword compares a login or change-password attempt against the
// stored hash. A mismatch is ErrPasswordMismatch; anything else means the
// stored hash is unusable.
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}

// IsPasswordValid reports whether a candidate password meets the policy
// without hashing it, for validation before the expensive bcrypt call
func IsPasswordValid(password string) bool {
	return len(password) >= MinPasswordLength
}
