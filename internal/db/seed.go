package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pcelinjak/hivelog/internal/config"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/security"
)

type UserSeeder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
}

// EnsurePrivilegedUser creates the configured manager or admin account once.
// Registration cannot grant ADMIN, so this is the only way such an account exists.
func EnsurePrivilegedUser(ctx context.Context, users UserSeeder, hasher *security.PasswordHasher, cfg config.Config) error {
	if cfg.ManagerEmail == "" || cfg.ManagerPassword == "" {
		return nil
	}

	role := user.Role(cfg.ManagerRole)
	if role != user.RoleManager && role != user.RoleAdmin {
		return fmt.Errorf("MANAGER_ROLE must be MENADZER or ADMIN, got %q", cfg.ManagerRole)
	}

	_, err := users.GetByEmail(ctx, cfg.ManagerEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.ManagerPassword)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, user.NewUser{
		Name:         cfg.ManagerName,
		Email:        cfg.ManagerEmail,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("seeded privileged account", "email", cfg.ManagerEmail, "role", role)
	return nil
}
