package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/analyticsdash/backend/internal/apperrors"
)

// TokenIssuer issues and verifies signed, time-bounded bearer tokens.
// Tokens are stateless and carry the subject email and an absolute expiry;
// there is no revocation list, so a token stays valid until it expires.
type TokenIssuer struct {
	secret string
	ttl    time.Duration
}

// NewTokenIssuer creates a new token issuer with the process-wide signing
// secret and the default time-to-live for issued tokens.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
	}
}

// Issue produces a signed token embedding the subject identifier and an
// absolute expiry computed from the issuer's TTL.
func (ti *TokenIssuer) Issue(subject string) (string, error) {
	return ti.IssueWithTTL(subject, ti.ttl)
}

// IssueWithTTL produces a signed token with an explicit time-to-live
func (ti *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify decodes the token, checks the signature and expiry, and returns the
// embedded subject. It fails with apperrors.ErrTokenExpired when the expiry
// has elapsed and apperrors.ErrTokenInvalid when the signature does not match
// or the structure is malformed.
func (ti *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ti.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %s", apperrors.ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %s", apperrors.ErrTokenInvalid, err)
	}

	if !token.Valid {
		return "", apperrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims", apperrors.ErrTokenInvalid)
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: subject not found in token", apperrors.ErrTokenInvalid)
	}

	return subject, nil
}
