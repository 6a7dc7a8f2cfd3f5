// Package services implements the business logic between handlers and repositories
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/auth"
	"github.com/analyticsdash/backend/internal/models"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user; its ID and CreatedAt
	// fields are filled in on success.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method List retrieves users with offset/limit pagination.
	//
	// "skip" and "limit" parameters control pagination.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	List(ctx context.Context, skip, limit int) ([]models.User, error)
	// Method Update applies a partial update to a user.
	//
	// "userID" parameter identifies the user to update.
	// "upd" parameter carries the fields to change; nil fields are left untouched.
	//
	// If user with such ID does not exist, the error will be returned.
	Update(ctx context.Context, userID int, upd *models.UserUpdate) error
}

// authService implements registration and login
type authService struct {
	userRepo    UserRepository
	tokenIssuer *auth.TokenIssuer
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenIssuer *auth.TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		userRepo:    userRepo,
		tokenIssuer: tokenIssuer,
		logger:      logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new active user account with a hashed password.
//
// The requested role is validated against the enumeration but otherwise
// honored, including "admin". Self-assignment of the admin role at
// registration is a known defect carried over from the source system; see
// DESIGN.md before tightening it.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(req.Email))
	if !emailRegex.MatchString(normalizedEmail) {
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// Hash password; empty passwords are rejected here
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, normalizedEmail)
	}

	user := &models.User{
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
		Bio:          req.Bio,
		Role:         role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int("userId", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Login authenticates a user by email and password and issues a bearer token
// with the configured expiry window.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: incorrect username or password", apperrors.ErrAuthentication)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists
		return "", fmt.Errorf("%w: incorrect username or password", apperrors.ErrAuthentication)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", fmt.Errorf("%w: incorrect username or password", apperrors.ErrAuthentication)
	}

	token, err := s.tokenIssuer.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}
