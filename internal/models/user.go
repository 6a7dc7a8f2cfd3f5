package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/analyticsdash/backend/internal/apperrors"
)

// Role is a closed enumeration of permission levels attached to a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// ParseRole normalizes and validates a role value supplied at the boundary.
// An empty value defaults to RoleUser. The role column is never stored as
// free text: casing is normalized here and the value is checked against the
// enumeration before it reaches the database.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role == "" {
		return RoleUser, nil
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: invalid role %q", apperrors.ErrValidation, value)
	}
	return role, nil
}

// Valid reports whether the role is one of the enumerated values
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer, RoleEditor:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID           int        `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	FullName     string     `json:"full_name,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// UserOut represents a user in API responses (without the password hash)
type UserOut struct {
	ID        int        `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	Bio       string     `json:"bio,omitempty"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Out converts a User to its API representation
func (u *User) Out() UserOut {
	return UserOut{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Bio:       u.Bio,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Role     string `json:"role,omitempty"` // defaults to "user"
}

// TokenResponse represents an issued bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdateProfileRequest represents a partial update of the caller's own profile.
// Only non-nil fields are changed.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserUpdate carries the resolved column values for a partial user update.
// Password is already hashed by the time it reaches the repository.
type UserUpdate struct {
	FullName     *string
	Email        *string
	Bio          *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
}
