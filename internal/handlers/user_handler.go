package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/auth"
	"github.com/analyticsdash/backend/internal/models"
)

// UserService is the interface that wraps methods for profile and user administration logic
type UserService interface {
	// Method GetProfile retrieves a user by ID.
	//
	// "userID" parameter identifies the user.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateProfile applies a partial update to the caller's own profile.
	//
	// "userID" parameter identifies the user.
	// "req" parameter carries the fields to change; nil fields are left untouched.
	//
	// If validation fails or the user does not exist, the error will be returned together with "nil" value.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// Method ListUsers retrieves a paginated list of users.
	//
	// "skip" and "limit" parameters control pagination; the limit is bounded.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	ListUsers(ctx context.Context, skip, limit int) ([]models.UserOut, error)
}

// UserHandler handles user profile and administration HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes.
// requireUser gates the profile endpoints; requireAdmin gates the listing.
func (h *UserHandler) RegisterRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", h.List)
		})
	})
}

// Me handles GET /users/me
// @Summary Get own profile
// @Description Get the authenticated user's profile.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserOut "User profile"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.respondJSON(w, http.StatusOK, user.Out())
}

// UpdateMe handles PUT /users/me
// @Summary Update own profile
// @Description Partially update the authenticated user's profile; unspecified fields are left untouched.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.UserOut "Updated profile"
// @Failure 400 {object} map[string]string "Validation error or duplicate email"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		h.logger.Error("failed to update profile", zap.Int("userId", user.ID), zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, updated.Out())
}

// List handles GET /users/
// @Summary List users
// @Description Paginated list of all users. Admin only.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param skip query int false "Pagination offset (default 0)"
// @Param limit query int false "Page size (default 100, capped)"
// @Success 200 {array} models.UserOut
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Admin privileges required"
// @Router /users/ [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	users, err := h.userService.ListUsers(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, users)
}

// queryInt parses an integer query parameter, falling back to def on absence
// or malformed input
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
