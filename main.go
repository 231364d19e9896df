package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/api"
	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/events"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (default: ./config.yaml if present)")
	migrateOnly := flag.Bool("migrate-only", false, "Apply migrations and exit")
	flag.Parse()

	if err := run(*configPath, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "expenseflow: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, migrateOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: logging.ComponentApp,
	})
	logging.SetDefault(logger)

	if !cfg.IsProduction() {
		logger.Info("Running in development environment", "env", cfg.Server.Env)
		if cfg.JWT.Secret == config.DevJWTSecret {
			logger.Warn("JWT secret not set, using a development key. This is NOT secure for production!")
		}
	}

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(logger); err != nil {
		return err
	}
	if migrateOnly {
		logger.Info("Migrations completed, exiting")
		return nil
	}

	publisher := newPublisher(cfg.AMQP, logger)
	defer publisher.Close()

	q := repository.New(db, db.Dialect)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifiers := auth.Chain{tokens}
	if cfg.Firebase.Enabled() {
		// Firebase is optional. Locally issued tokens keep working without it.
		client, err := auth.NewFirebaseClient(ctx, cfg.Firebase)
		if err != nil {
			logger.Warn("Failed to initialize Firebase, ID token verification disabled", logging.FieldError, err)
		} else {
			verifiers = append(verifiers, auth.NewFirebaseVerifier(client, q))
			logger.Info("Firebase Admin SDK initialized")
		}
	}

	server := api.NewServer(api.Deps{
		DB:            db,
		Auth:          services.NewAuthService(q, auth.NewPasswordHasher(cfg.Security.BcryptCost), tokens, logger),
		Sources:       services.NewSourceService(db, publisher, logger),
		Expenses:      services.NewExpenseService(db, publisher, logger),
		Verifier:      auth.ExistingUser{Next: verifiers, Users: q},
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		Logger:        logger,
	})

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         cfg.Addr(),
		WriteTimeout: cfg.Server.WriteTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newPublisher connects to AMQP when configured. Events are only logged
// otherwise, or when the broker is unreachable at startup.
func newPublisher(cfg config.AMQPConfig, logger *logging.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.NewLogPublisher(logger)
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, falling back to logging events", logging.FieldError, err)
		return events.NewLogPublisher(logger)
	}
	return p
}
