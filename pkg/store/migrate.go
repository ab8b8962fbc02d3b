package store

import (
	"database/sql"
	"embed"

	"github.com/nagelea/keysentry/pkg/errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies pending schema migrations. Safe to call on every
// startup; already-applied migrations are skipped.
func RunMigrations(db *sql.DB) (err error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "unable to create migration source")
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return errors.Wrap(err, "unable to create migration db driver")
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return errors.Wrap(err, "unable to create migrator")
	}

	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "unable to run migrations")
	}

	return nil
}
