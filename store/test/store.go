package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/store"
	"github.com/sweax/sweax/store/db"
)

// NewTestingStore opens a fresh SQLite-backed store in a temp directory
// and applies the latest schema.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	p := &profile.Profile{
		Mode:   "prod",
		Data:   t.TempDir(),
		Driver: "sqlite",
	}
	p.DSN = filepath.Join(p.Data, "sweax_test.db")

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(ctx))

	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

func createTestingUser(ctx context.Context, t *testing.T, ts *store.Store) *store.User {
	user, err := ts.CreateUser(ctx, &store.User{
		Username:     "gardas",
		PasswordHash: "x",
		Role:         store.UserRoleAdmin,
		CreatedTs:    1700000000,
	})
	require.NoError(t, err)
	return user
}
