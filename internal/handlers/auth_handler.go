package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/models"
)

// AuthService is the interface that wraps methods for authentication business logic
type AuthService interface {
	// Method Register performs user credentials validation and creation.
	//
	// "req" parameter contains email, password and optional full name, bio and role.
	//
	// If the email is already registered, or validation fails, or some other
	// error occurs, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login performs credentials validation and returns a bearer token.
	//
	// "email" and "password" parameters identify the user.
	//
	// If credentials are invalid, the error will be returned together with an empty token.
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/token", h.Token)
}

// Register handles POST /register
// @Summary Register a new user
// @Description Register a new user with email, password and optional full name, bio and role (defaults to "user").
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 200 {object} models.UserOut "Created user"
// @Failure 400 {object} map[string]string "Duplicate email or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user.Out())
}

// Token handles POST /token
// @Summary Issue a bearer token
// @Description Authenticate with form-encoded username (=email) and password and receive a bearer token.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "User email"
// @Param password formData string true "User password"
// @Success 200 {object} models.TokenResponse "Bearer token"
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Router /token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		h.logger.Warn("login failed", zap.Error(err))
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
