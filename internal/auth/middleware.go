package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/models"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// UserResolver resolves a token subject to a stored user record
type UserResolver interface {
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireUser validates the bearer token, resolves it to an existing active
// user via the credential store and stores that user in the request context.
// Requests without a valid token backed by an active user get 401.
func RequireUser(issuer *TokenIssuer, users UserResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := resolveUser(w, r, issuer, users, logger)
			if !ok {
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// RequireAdmin performs the active-user check and additionally requires the
// admin role. Non-admin users get 403.
func RequireAdmin(issuer *TokenIssuer, users UserResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := resolveUser(w, r, issuer, users, logger)
			if !ok {
				return
			}

			if user.Role != models.RoleAdmin {
				respondAuthError(w, http.StatusForbidden, "admin privileges required")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// CurrentUser retrieves the authenticated user from context
func CurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*models.User)
	return user, ok
}

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// resolveUser extracts the bearer token, verifies it and resolves the subject
// to an active user. On failure it writes the 401 response and returns false.
func resolveUser(w http.ResponseWriter, r *http.Request, issuer *TokenIssuer, users UserResolver, logger *zap.Logger) (*models.User, bool) {
	token := extractBearerToken(r)
	if token == "" {
		respondAuthError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	subject, err := issuer.Verify(token)
	if err != nil {
		respondAuthError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}

	user, err := users.GetByEmail(r.Context(), subject)
	if err != nil {
		logger.Warn("token subject does not resolve to a user",
			zap.String("subject", subject),
			zap.Error(err),
		)
		respondAuthError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}

	if !user.IsActive {
		respondAuthError(w, http.StatusUnauthorized, "inactive user")
		return nil, false
	}

	return user, true
}

// extractBearerToken pulls the token from the Authorization header.
// Expected format: "Bearer <token>".
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}

func respondAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)
	w.Write([]byte(`{"detail":"` + message + `"}`))
}
