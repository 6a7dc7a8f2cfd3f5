package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analyticsdash/backend/internal/apperrors"
)

func TestNewTokenIssuer(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		ttl    time.Duration
	}{
		{
			name:   "standard initialization",
			secret: "test-secret-key",
			ttl:    30 * time.Minute,
		},
		{
			name:   "short ttl",
			secret: "short-secret",
			ttl:    1 * time.Minute,
		},
		{
			name:   "long ttl",
			secret: "long-secret",
			ttl:    24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := NewTokenIssuer(tt.secret, tt.ttl)

			assert.NotNil(t, issuer)
			assert.Equal(t, tt.secret, issuer.secret)
			assert.Equal(t, tt.ttl, issuer.ttl)
		})
	}
}

func TestTokenIssuer_Issue(t *testing.T) {
	issuer := NewTokenIssuer("b8a3c2267dc85f855dea9b46b452bf20", 30*time.Minute)

	t.Run("success", func(t *testing.T) {
		token, err := issuer.Issue("user@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		// JWT tokens have 3 parts separated by dots
		parts := strings.Split(token, ".")
		assert.Len(t, parts, 3)
	})

	t.Run("round trip preserves subject", func(t *testing.T) {
		token, err := issuer.Issue("roundtrip@example.com")
		require.NoError(t, err)

		subject, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "roundtrip@example.com", subject)
	})

	t.Run("claims carry expiry and issued-at", func(t *testing.T) {
		before := time.Now().Unix()
		tokenString, err := issuer.Issue("claims@example.com")
		require.NoError(t, err)
		after := time.Now().Unix()

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			return []byte("b8a3c2267dc85f855dea9b46b452bf20"), nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)

		iat, ok := claims["iat"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, int64(iat), before)
		assert.LessOrEqual(t, int64(iat), after)

		exp, ok := claims["exp"].(float64)
		require.True(t, ok)
		expectedExp := time.Unix(int64(iat), 0).Add(30 * time.Minute).Unix()
		assert.Equal(t, expectedExp, int64(exp))
	})
}

func TestTokenIssuer_Verify(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	issuer := NewTokenIssuer(secret, 30*time.Minute)

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue("valid@example.com")
		require.NoError(t, err)

		subject, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "valid@example.com", subject)
	})

	t.Run("empty string token", func(t *testing.T) {
		_, err := issuer.Verify("")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.IssueWithTTL("expired@example.com", -1*time.Hour)
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := issuer.Issue("user@example.com")
		require.NoError(t, err)

		wrongIssuer := NewTokenIssuer("wrong-secret", 30*time.Minute)
		_, err = wrongIssuer.Verify(token)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("non-HMAC signing method rejected", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "user@example.com",
			"exp": time.Now().Add(1 * time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(tokenString)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
	})

	t.Run("token without subject claim", func(t *testing.T) {
		claims := jwt.MapClaims{
			"exp": time.Now().Add(1 * time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = issuer.Verify(tokenString)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
		assert.Contains(t, err.Error(), "subject not found")
	})

	t.Run("token with non-string subject", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": 12345,
			"exp": time.Now().Add(1 * time.Hour).Unix(),
			"iat": time.Now().Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = issuer.Verify(tokenString)
		assert.Error(t, err)
	})
}

func TestTokenIssuer_IssueWithTTL(t *testing.T) {
	issuer := NewTokenIssuer("b8a3c2267dc85f855dea9b46b452bf20", 30*time.Minute)

	t.Run("explicit ttl overrides default", func(t *testing.T) {
		token, err := issuer.IssueWithTTL("short@example.com", 1*time.Second)
		require.NoError(t, err)

		// Valid immediately
		subject, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "short@example.com", subject)

		time.Sleep(1200 * time.Millisecond)

		// Expired after the ttl elapses
		_, err = issuer.Verify(token)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
	})
}
