package auth

import (
	"errors"
	"fmt"

	"restaurant-api/apperrors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted for hashing.
const MinPasswordLength = 6

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must have at least %d characters", apperrors.ErrBadRequest, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password is too long", apperrors.ErrBadRequest)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Mismatches are not errors.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
