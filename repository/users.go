package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
)

const userColumns = `id, email, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user and returns it with its new id.
func (q *Queries) CreateUser(ctx context.Context, email, passwordHash string, createdAt time.Time) (*models.User, error) {
	u := &models.User{Email: email, PasswordHash: passwordHash, CreatedAt: createdAt}
	err := q.queryRow(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`,
		email, passwordHash, createdAt,
	).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUserByEmail matches the email case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER(?)`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (q *Queries) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.queryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER(?))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}
