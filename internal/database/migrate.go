package database

import (
	"embed"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func (p *PostgresDB) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "error opening embedded migrations")
	}

	driver, err := postgres.WithInstance(p.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "error creating postgres driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, "error creating migration instance")
	}
	return m, nil
}

// MigrationsUp applies every pending migration.
func (p *PostgresDB) MigrationsUp() error {
	m, err := p.newMigrate()
	if err != nil {
		return err
	}

	err = m.Up()
	if err == migrate.ErrNoChange {
		slog.Info("migration state is up to date")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "error running migrations")
	}

	slog.Info("ran migrations successfully")
	return nil
}

// MigrationsDown rolls back the given number of migrations.
func (p *PostgresDB) MigrationsDown(steps int) error {
	m, err := p.newMigrate()
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
		return errors.Wrapf(err, "error running %d down migrations", steps)
	}
	slog.Info("went down migrations", "steps", steps)
	return nil
}

// MigrationVersion reports the applied schema version.
func (p *PostgresDB) MigrationVersion() (uint, bool, error) {
	m, err := p.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return version, dirty, err
}
