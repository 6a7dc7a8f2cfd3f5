// Command adminctl provisions and repairs user accounts from the command line.
// It replaces ad hoc one-off scripts with a single idempotent tool: running it
// twice with the same arguments leaves the database in the same state.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/auth"
	"github.com/analyticsdash/backend/internal/config"
	"github.com/analyticsdash/backend/internal/logger"
	"github.com/analyticsdash/backend/internal/models"
	"github.com/analyticsdash/backend/internal/repositories"
	"github.com/analyticsdash/backend/internal/services"
)

func main() {
	var (
		email          = flag.String("email", "", "email of the account to create or update")
		password       = flag.String("password", "", "password to set (required when creating)")
		fullName       = flag.String("name", "", "full name to set")
		role           = flag.String("role", "admin", "role to assign (admin, user, viewer, editor)")
		demote         = flag.Bool("demote", false, "demote the account to the user role instead of assigning -role")
		normalizeRoles = flag.Bool("normalize-roles", false, "lowercase all stored role values and report invalid ones")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userRepo := repositories.NewUserRepository(db, logger.Logger)

	if *normalizeRoles {
		invalid, err := userRepo.NormalizeRoles(ctx)
		if err != nil {
			logger.Logger.Fatal("Failed to normalize roles", zap.Error(err))
		}
		if invalid > 0 {
			logger.Logger.Warn("rows with a role outside the enumeration remain", zap.Int64("count", invalid))
		} else {
			logger.Logger.Info("all stored roles are valid")
		}
		return
	}

	if *email == "" {
		log.Fatalln("-email is required (or use -normalize-roles)")
	}

	roleValue := *role
	if *demote {
		roleValue = string(models.RoleUser)
	}

	if err := ensureAccount(ctx, userRepo, *email, *password, *fullName, roleValue); err != nil {
		logger.Logger.Fatal("Failed to provision account", zap.Error(err))
	}
}

// ensureAccount creates the user if absent, otherwise updates the provided
// fields. The account always ends up active with the requested role.
func ensureAccount(ctx context.Context, userRepo services.UserRepository, email, password, fullName, roleValue string) error {
	role, err := models.ParseRole(roleValue)
	if err != nil {
		return err
	}

	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Not found: create a fresh account
		if password == "" {
			return fmt.Errorf("-password is required when creating a new account")
		}

		passwordHash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		user = &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			Role:         role,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}

		logger.Logger.Info("account created",
			zap.Int("userId", user.ID),
			zap.String("role", string(role)),
		)
		return nil
	}

	// Existing account: update only what was provided
	active := true
	upd := &models.UserUpdate{
		Role:     &role,
		IsActive: &active,
	}
	if password != "" {
		passwordHash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		upd.PasswordHash = &passwordHash
	}
	if fullName != "" {
		upd.FullName = &fullName
	}

	if err := userRepo.Update(ctx, user.ID, upd); err != nil {
		return err
	}

	logger.Logger.Info("account updated",
		zap.Int("userId", user.ID),
		zap.String("role", string(role)),
	)
	return nil
}
