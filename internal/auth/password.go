// Package auth implements password hashing, bearer-token issuance/verification
// and the role-based access-control guard.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/analyticsdash/backend/internal/apperrors"
)

// HashPassword hashes a plaintext password with bcrypt.
// bcrypt embeds a random per-call salt, so hashing the same password twice
// yields different digests while CheckPassword still succeeds for both.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password cannot be empty", apperrors.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored digest
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
