package db

import (
	"context"
	"testing"

	"github.com/pcelinjak/hivelog/internal/config"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/repo/memory"
	"github.com/pcelinjak/hivelog/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsurePrivilegedUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	hasher := security.NewPasswordHasher(4)
	cfg := config.Config{ManagerEmail: "boss@x.rs", ManagerPassword: "pass123", ManagerName: "Boss", ManagerRole: "MENADZER"}

	require.NoError(t, EnsurePrivilegedUser(ctx, users, hasher, cfg))
	require.NoError(t, EnsurePrivilegedUser(ctx, users, hasher, cfg))

	u, err := users.GetByEmail(ctx, "boss@x.rs")
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, u.Role)
	assert.True(t, hasher.Verify("pass123", u.PasswordHash))

	ids, err := users.ListIDsByRole(ctx, user.RoleManager)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestEnsurePrivilegedUser_SkipsWithoutConfig(t *testing.T) {
	users := memory.NewStore().Users()
	require.NoError(t, EnsurePrivilegedUser(context.Background(), users, security.NewPasswordHasher(4), config.Config{}))
}

func TestEnsurePrivilegedUser_RejectsPlainRole(t *testing.T) {
	users := memory.NewStore().Users()
	cfg := config.Config{ManagerEmail: "x@x.rs", ManagerPassword: "p", ManagerRole: "KORISNIK"}
	require.Error(t, EnsurePrivilegedUser(context.Background(), users, security.NewPasswordHasher(4), cfg))
}
