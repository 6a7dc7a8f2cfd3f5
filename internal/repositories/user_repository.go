// Package repositories implements data access over the embedded SQLite database
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/models"
)

// userRepository implements user data access over the users table
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, bio, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Email, user.PasswordHash, user.FullName, user.Bio, user.Role, user.IsActive)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)

	// Read back the server-assigned creation timestamp
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM users WHERE id = ?`, user.ID).Scan(&user.CreatedAt); err != nil {
		r.logger.Error("failed to read created_at", zap.Error(err))
		return fmt.Errorf("failed to read created_at: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, bio, role, is_active, created_at, updated_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, bio, role, is_active, created_at, updated_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// List retrieves users ordered by ID with offset/limit pagination
func (r *userRepository) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, bio, role, is_active, created_at, updated_at
		FROM users
		ORDER BY id
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var fullName, bio sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &fullName, &bio, &user.Role, &user.IsActive, &user.CreatedAt, &updatedAt); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.FullName = fullName.String
		user.Bio = bio.String
		if updatedAt.Valid {
			user.UpdatedAt = &updatedAt.Time
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Update applies a partial update to a user. Only non-nil fields of upd are
// changed; updated_at is always refreshed.
func (r *userRepository) Update(ctx context.Context, userID int, upd *models.UserUpdate) error {
	var setParts []string
	var args []any

	if upd.Email != nil {
		setParts = append(setParts, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.PasswordHash != nil {
		setParts = append(setParts, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.FullName != nil {
		setParts = append(setParts, "full_name = ?")
		args = append(args, *upd.FullName)
	}
	if upd.Bio != nil {
		setParts = append(setParts, "bio = ?")
		args = append(args, *upd.Bio)
	}
	if upd.Role != nil {
		setParts = append(setParts, "role = ?")
		args = append(args, *upd.Role)
	}
	if upd.IsActive != nil {
		setParts = append(setParts, "is_active = ?")
		args = append(args, *upd.IsActive)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	setParts = append(setParts, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, userID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %d", apperrors.ErrNotFound, userID)
	}

	return nil
}

// NormalizeRoles lowercases every stored role value and returns the number of
// rows that still hold a value outside the enumeration afterwards.
func (r *userRepository) NormalizeRoles(ctx context.Context) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET role = LOWER(role)`); err != nil {
		r.logger.Error("failed to normalize roles", zap.Error(err))
		return 0, fmt.Errorf("failed to normalize roles: %w", err)
	}

	var invalid int64
	query := `SELECT COUNT(*) FROM users WHERE role NOT IN (?, ?, ?, ?)`
	err := r.db.QueryRowContext(ctx, query, models.RoleAdmin, models.RoleUser, models.RoleViewer, models.RoleEditor).Scan(&invalid)
	if err != nil {
		return 0, fmt.Errorf("failed to count invalid roles: %w", err)
	}

	return invalid, nil
}

// scanUser scans a single user row
func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var fullName, bio sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&fullName,
		&bio,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to scan user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.FullName = fullName.String
	user.Bio = bio.String
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}

	return user, nil
}
