package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/auth"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	q      *repository.Queries
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	logger *logging.Logger
	now    func() time.Time

	// dummyHash is compared against when the email is unknown, so both
	// login failures cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(q *repository.Queries, hasher *auth.PasswordHasher, tokens *auth.TokenManager, logger *logging.Logger) *AuthService {
	dummy, _ := hasher.Hash("expenseflow-dummy-password")
	return &AuthService{
		q:         q,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.WithComponent(logging.ComponentAuth),
		now:       time.Now,
		dummyHash: dummy,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" {
		return validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("invalid email address")
	}
	if password == "" {
		return validationError("password is required")
	}
	return nil
}

// SignUp creates a user with a bcrypt-hashed password.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	exists, err := s.q.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError("Email is already registered")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, validationError("password must be at most 72 bytes")
		}
		return nil, err
	}

	u, err := s.q.CreateUser(ctx, email, hash, s.now().UTC())
	if err != nil {
		// Lost a race with a concurrent signup for the same email.
		if repository.IsUniqueViolation(err) {
			return nil, conflictError("Email is already registered")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", logging.FieldUserID, u.ID, logging.FieldOperation, logging.OpSignUp)
	return u, nil
}

// Login verifies credentials and issues a signed token. Unknown emails and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = NormalizeEmail(email)

	u, err := s.q.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Matches(s.dummyHash, password)
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Matches(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "failed login", logging.FieldUserID, u.ID)
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", logging.FieldUserID, u.ID, logging.FieldOperation, logging.OpLogin)
	return &models.AuthResponse{Token: token}, nil
}
