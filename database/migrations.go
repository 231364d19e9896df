package database

import (
	"fmt"

	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/migrations"
)

// Migrate brings the schema up to date.
func (db *DB) Migrate(logger *logging.Logger) error {
	logger.Info("running database migrations", "dialect", string(db.Dialect))

	status, err := migrations.Up(db.DB, string(db.Dialect))
	if err != nil {
		logger.Error("database migrations failed", logging.FieldError, err)
		return fmt.Errorf("migrate %s database: %w", db.Dialect, err)
	}

	logger.Info("database migrations completed", "version", status.Version)
	return nil
}
