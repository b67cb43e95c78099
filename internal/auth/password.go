package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced unless the weak-password switch is on.
const MinPasswordLength = 10

var ErrPasswordTooShort = fmt.Errorf("must be at least %d characters", MinPasswordLength)

// PasswordPolicy validates new passwords.
type PasswordPolicy struct {
	AllowWeak bool
}

// Check returns nil when password is acceptable under the policy.
func (p PasswordPolicy) Check(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("required")
	}
	if p.AllowWeak {
		return nil
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
