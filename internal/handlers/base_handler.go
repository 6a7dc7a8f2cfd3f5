// Package handlers implements the HTTP routing layer
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response with a human-readable detail string
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, detail string) {
	h.respondJSON(w, status, map[string]string{"detail": detail})
}

// respondAppError maps a service error to an HTTP status and responds.
// Unexpected internal failures surface as a generic 500.
func (h *BaseHandler) respondAppError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}
	h.respondError(w, status, detail)
}

// statusFromError maps the error taxonomy to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthentication),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
