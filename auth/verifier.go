// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

// ErrInvalidToken covers every reason a bearer token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the local user a verified token resolves to.
type Identity struct {
	UserID int64
	Email  string
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// UserFinder looks up local users. *repository.Queries satisfies it.
type UserFinder interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (Identity, error) {
	if len(c) == 0 {
		return Identity{}, ErrInvalidToken
	}
	var errs []error
	for _, v := range c {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, errors.Join(errs...))
}

// ExistingUser wraps a Verifier and rejects tokens whose user has since
// been deleted.
type ExistingUser struct {
	Next  Verifier
	Users UserFinder
}

func (e ExistingUser) Verify(ctx context.Context, token string) (Identity, error) {
	id, err := e.Next.Verify(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	u, err := e.Users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, fmt.Errorf("%w: user %d no longer exists", ErrInvalidToken, id.UserID)
		}
		return Identity{}, fmt.Errorf("load token user: %w", err)
	}
	return Identity{UserID: u.ID, Email: u.Email}, nil
}
