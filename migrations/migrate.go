// Package migrations holds the versioned schema for SQLite and PostgreSQL
// and applies it with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Status describes the schema version after a run.
type Status struct {
	Version uint
	Dirty   bool
}

func newMigrate(db *sql.DB, driver string) (*migrate.Migrate, func() error, error) {
	var (
		dir      string
		instance database.Driver
		conn     *sql.Conn
		err      error
	)

	switch driver {
	case "sqlite3":
		dir = "sql/sqlite"
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		dir = "sql/postgres"
		ctx := context.Background()
		conn, err = db.Conn(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire migration connection: %w", err)
		}
		instance, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			conn.Close()
		}
	default:
		return nil, nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	// m.Close would close the caller's *sql.DB through the driver, so the
	// source and the dedicated connection are released by hand instead.
	closer := func() error {
		var connErr error
		if conn != nil {
			connErr = conn.Close()
		}
		return connErr
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}

	release := func() error {
		return errors.Join(src.Close(), closer())
	}
	return m, release, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func Up(db *sql.DB, driver string) (Status, error) {
	m, closeFn, err := newMigrate(db, driver)
	if err != nil {
		return Status{}, err
	}
	defer closeFn()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("run migrations: %w", err)
	}
	return version(m)
}

// Down rolls back the given number of migrations.
func Down(db *sql.DB, driver string, steps int) (Status, error) {
	if steps <= 0 {
		return Status{}, fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, closeFn, err := newMigrate(db, driver)
	if err != nil {
		return Status{}, err
	}
	defer closeFn()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("roll back migrations: %w", err)
	}
	return version(m)
}

// Version reports the current schema version without changing anything.
func Version(db *sql.DB, driver string) (Status, error) {
	m, closeFn, err := newMigrate(db, driver)
	if err != nil {
		return Status{}, err
	}
	defer closeFn()
	return version(m)
}

func version(m *migrate.Migrate) (Status, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}
