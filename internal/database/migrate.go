package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/agrisense/pathotrack/migrations"
)

// Migrate applies all pending schema migrations embedded in the migrations
// package.  It is idempotent: running it against an up-to-date database is
// a no-op.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Printf("migrations: database up-to-date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	if v, dirty, verr := m.Version(); verr == nil {
		log.Printf("migrations: applied, now at version %d (dirty=%v)", v, dirty)
	}
	return nil
}
