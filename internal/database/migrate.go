package database

import (
	"errors"
	"fmt"

	"github.com/Ogyrecheg/yatube/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-multierror"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens the embedded migration source against databaseURL.
// Callers must Close it.
func NewMigrator(databaseURL string) (*Migrator, error) {
	if databaseURL == "" {
		return nil, ErrNoDatabaseURL
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations and returns the resulting version.
// A dirty database is forced clean at its recorded version first.
// Already being up to date is not an error.
func (mg *Migrator) Up() (uint, error) {
	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		if err := mg.m.Force(int(version)); err != nil {
			return 0, fmt.Errorf("failed to force version %d: %w", version, err)
		}
	}

	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	return mg.version()
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) (uint, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := mg.m.Steps(-steps); err != nil {
		return 0, fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return mg.version()
}

// Version returns the applied version and whether it is dirty.
// A database without migrations reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) version() (uint, error) {
	v, _, err := mg.Version()
	return v, err
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	var result *multierror.Error
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		result = multierror.Append(result, fmt.Errorf("close migration source: %w", srcErr))
	}
	if dbErr != nil {
		result = multierror.Append(result, fmt.Errorf("close migration database: %w", dbErr))
	}
	return result.ErrorOrNil()
}
