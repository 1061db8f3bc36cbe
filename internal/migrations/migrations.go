// Package migrations holds the versioned cache schema for each supported
// dialect and applies it through golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// New builds a migrate instance bound to an already open handle.
// Do not Close the result: closing the driver closes db as well.
func New(db *sqlx.DB, dbType config.DBType) (*migrate.Migrate, error) {
	dir := "postgres"
	if dbType == config.DBTypeMemory || dbType == config.DBTypeSQLite {
		dir = "sqlite"
	}

	source, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	var driver database.Driver
	if dir == "sqlite" {
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s driver: %w", dir, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dir, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Up applies every pending migration.
func Up(db *sqlx.DB, dbType config.DBType) error {
	m, err := New(db, dbType)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down reverts every applied migration.
func Down(db *sqlx.DB, dbType config.DBType) error {
	m, err := New(db, dbType)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version reports the current schema version. A fresh database reports 0.
func Version(db *sqlx.DB, dbType config.DBType) (uint, bool, error) {
	m, err := New(db, dbType)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
