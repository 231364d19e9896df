package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/migrations"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	down := flag.Int("down", 0, "Roll back this many migrations instead of applying")
	showVersion := flag.Bool("version", false, "Print the current schema version and exit")
	flag.Parse()

	logger := logging.New(logging.Config{Component: logging.ComponentStorage})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", logging.FieldError, err)
		os.Exit(1)
	}
	logger = logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: logging.ComponentStorage,
	})

	// Initialize database connection
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Error("Failed to initialize database", logging.FieldError, err)
		os.Exit(1)
	}
	defer db.Close()

	driver := string(db.Dialect)

	var status migrations.Status
	switch {
	case *showVersion:
		status, err = migrations.Version(db.DB, driver)
	case *down > 0:
		logger.Info("Rolling back migrations", "steps", *down)
		status, err = migrations.Down(db.DB, driver, *down)
	default:
		logger.Info("Applying migrations", "dialect", driver)
		status, err = migrations.Up(db.DB, driver)
	}
	if err != nil {
		logger.Error("Failed to run migrations", logging.FieldError, err)
		db.Close()
		os.Exit(1)
	}

	fmt.Printf("Schema version %d (dirty: %t)\n", status.Version, status.Dirty)
	if status.Dirty {
		logger.Warn("Schema is dirty, fix the failed migration and force the version")
		db.Close()
		os.Exit(1)
	}
}
