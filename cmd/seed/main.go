package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/internal/users"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
	"github.com/rvalverde/assettrack-backend/pkg/security"
)

// Seeds the bootstrap account so a fresh deployment has someone who can
// log in and create the rest of the staff.
func main() {
	var (
		email     = flag.String("email", "", "email for the seeded account (required)")
		password  = flag.String("password", "", "plaintext password to hash (required)")
		firstName = flag.String("first-name", "Admin", "first name")
		lastName  = flag.String("last-name", "User", "last name")
		role      = flag.String("role", enums.UserRoleAdmin.String(), "role: employee|technician|manager|admin")
	)
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if *email == "" || *password == "" {
		logg.Error(ctx, "missing required flags", errors.New("-email and -password are required"))
		os.Exit(2)
	}

	parsedRole, err := enums.ParseUserRole(*role)
	if err != nil {
		logg.Error(ctx, "invalid role", err)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	repo := users.NewRepository(dbClient.DB())

	if existing, err := repo.FindByEmail(ctx, *email); err == nil && existing != nil {
		logg.Info(logg.WithField(ctx, "email", *email), "user already exists, nothing to do")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(ctx, "failed to check for existing user", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	user, err := repo.Create(ctx, users.CreateUserDTO{
		Email:        *email,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         parsedRole,
	})
	if err != nil {
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"email": user.Email,
		"role":  user.Role.String(),
		"id":    user.ID.String(),
	}), "seeded user")
}
