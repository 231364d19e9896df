package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/config"
	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
	"github.com/prakhar3125/ExpenseFlow-backend/services"
)

// stdin is shared so a buffered email line never swallows the password.
var stdin = bufio.NewReader(os.Stdin)

func main() {
	configPath := flag.String("config", "", "Path to a config file")
	email := flag.String("email", "", "Email of the new user")
	flag.Parse()

	logger := logging.New(logging.Config{Level: "warn", Component: logging.ComponentAuth})

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, "Failed to load config", err)
	}
	logger = logging.New(logging.Config{Level: "warn", Format: cfg.Log.Format, Component: logging.ComponentAuth})

	if *email == "" {
		fmt.Print("Email: ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			fatal(logger, "Failed to read email", err)
		}
		*email = strings.TrimSpace(line)
	}

	password, err := readPassword()
	if err != nil {
		fatal(logger, "Failed to read password", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		fatal(logger, "Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(logger); err != nil {
		db.Close()
		fatal(logger, "Failed to run migrations", err)
	}

	q := repository.New(db, db.Dialect)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	svc := services.NewAuthService(q, auth.NewPasswordHasher(cfg.Security.BcryptCost), tokens, logger)

	user, err := svc.SignUp(context.Background(), *email, password)
	if err != nil {
		db.Close()
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			fmt.Fprintln(os.Stderr, svcErr.Message)
			os.Exit(1)
		}
		fatal(logger, "Failed to create user", err)
	}
	fmt.Printf("Created user %d <%s>\n", user.ID, user.Email)
}

func fatal(logger *logging.Logger, msg string, err error) {
	logger.Error(msg, logging.FieldError, err)
	os.Exit(1)
}

// readPassword prompts twice without echo when stdin is a terminal, and
// reads a single line otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
