package main

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	pginfra "github.com/oksasatya/go-ecommerce-backend/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

// seedAdmin creates a verified admin or promotes an existing account with the
// same email. An existing password is left unchanged.
func seedAdmin(ctx context.Context, users repository.UserRepository, hasher *helpers.Hasher, cfg *config.Config) (*entity.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if !validation.Valid(email, "required,simpleemail") {
		return nil, false, errors.New("ADMIN_EMAIL is missing or invalid")
	}

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		u.Role = entity.RoleAdmin
		u.IsVerified = true
		u.OTP = nil
		if err := users.Update(ctx, u); err != nil {
			return nil, false, err
		}
		return u, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	if !validation.StrongPassword(cfg.AdminPassword) {
		return nil, false, errors.New("ADMIN_PASSWORD must be at least 8 characters with upper, lower, digit and symbol")
	}
	if !validation.Valid(cfg.AdminPhone, "required,phone") {
		return nil, false, errors.New("ADMIN_PHONE is missing or invalid")
	}
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return nil, false, err
	}
	u = &entity.User{
		Name:       cfg.AdminName,
		Email:      email,
		Phone:      cfg.AdminPhone,
		Password:   hash,
		Role:       entity.RoleAdmin,
		IsVerified: true,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	u, created, err := seedAdmin(ctx, pginfra.NewUserRepository(pool), helpers.NewHasher(cfg.BcryptCost), cfg)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "created": created}).Info("admin seeded")
}
