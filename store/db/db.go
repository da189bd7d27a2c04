package db

import (
	"github.com/pkg/errors"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/store"
	"github.com/sweax/sweax/store/db/postgres"
	"github.com/sweax/sweax/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default and suits single-user deployments; similarity
// search runs in process. PostgreSQL adds pgvector-backed similarity
// search for larger corpora.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
