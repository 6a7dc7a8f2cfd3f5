package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/auth"
	"github.com/analyticsdash/backend/internal/models"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// userService implements profile and user administration logic
type userService struct {
	userRepo UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, logger *zap.Logger) *userService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetProfile retrieves a user by ID
func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update to the caller's own profile.
// Unspecified fields are left untouched. An email change is re-checked for
// duplicates; a new password is hashed before it reaches the store.
func (s *userService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.FullName == nil && req.Email == nil && req.Bio == nil && req.Password == nil {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	upd := &models.UserUpdate{
		FullName: req.FullName,
		Bio:      req.Bio,
	}

	if req.Email != nil {
		normalizedEmail := strings.TrimSpace(strings.ToLower(*req.Email))
		if !emailRegex.MatchString(normalizedEmail) {
			return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
		}

		current, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		if normalizedEmail != current.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateEmail, normalizedEmail)
			}
		}

		upd.Email = &normalizedEmail
	}

	if req.Password != nil {
		passwordHash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &passwordHash
	}

	if err := s.userRepo.Update(ctx, userID, upd); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.Int("userId", userID))

	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers retrieves a paginated list of users. The limit is bounded to
// prevent unbounded scans.
func (s *userService) ListUsers(ctx context.Context, skip, limit int) ([]models.UserOut, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, err := s.userRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserOut, len(users))
	for i := range users {
		out[i] = users[i].Out()
	}

	return out, nil
}
