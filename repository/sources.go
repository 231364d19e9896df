package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prakhar3125/ExpenseFlow-backend/models"
)

// The spent sub-select makes the sum of zero expenses an exact 0.
const sourceSelect = `SELECT s.id, s.user_id, s.name, s.type, s.initial_balance_cents, s.color,
	s.alert_threshold_cents, s.is_active, s.description, s.created_at,
	CAST(COALESCE((SELECT SUM(e.amount_cents) FROM expenses e WHERE e.source_id = s.id), 0) AS BIGINT) AS spent_cents
	FROM sources s`

func scanSource(row interface{ Scan(...any) error }) (*models.Source, error) {
	var (
		s         models.Source
		initial   int64
		threshold sql.NullInt64
		spent     int64
		typ       string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &typ, &initial, &s.Color,
		&threshold, &s.IsActive, &s.Description, &s.CreatedAt, &spent)
	if err != nil {
		return nil, err
	}

	s.Type = models.SourceType(typ)
	s.InitialBalance = models.FromCents(initial)
	s.CurrentBalance = models.FromCents(initial - spent)
	if threshold.Valid {
		s.AlertThreshold = decimal.NewNullDecimal(models.FromCents(threshold.Int64))
	}
	return &s, nil
}

func thresholdCents(t decimal.NullDecimal) sql.NullInt64 {
	if !t.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: models.ToCents(t.Decimal), Valid: true}
}

// ListSources returns the user's sources with their current balances.
func (q *Queries) ListSources(ctx context.Context, userID int64) ([]models.Source, error) {
	rows, err := q.query(ctx, sourceSelect+` WHERE s.user_id = ? ORDER BY s.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// GetSource loads a source regardless of owner. Callers enforce ownership.
func (q *Queries) GetSource(ctx context.Context, id int64) (*models.Source, error) {
	s, err := scanSource(q.queryRow(ctx, sourceSelect+` WHERE s.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// CreateSource inserts s and stores the generated id on it.
func (q *Queries) CreateSource(ctx context.Context, s *models.Source) error {
	err := q.queryRow(ctx,
		`INSERT INTO sources (user_id, name, type, initial_balance_cents, color, alert_threshold_cents, is_active, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		s.UserID, s.Name, string(s.Type), models.ToCents(s.InitialBalance), s.Color,
		thresholdCents(s.AlertThreshold), s.IsActive, s.Description, s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// UpdateSource overwrites every mutable column. created_at and user_id stay.
func (q *Queries) UpdateSource(ctx context.Context, s *models.Source) error {
	_, err := q.exec(ctx,
		`UPDATE sources SET name = ?, type = ?, initial_balance_cents = ?, color = ?,
		 alert_threshold_cents = ?, is_active = ?, description = ?
		 WHERE id = ?`,
		s.Name, string(s.Type), models.ToCents(s.InitialBalance), s.Color,
		thresholdCents(s.AlertThreshold), s.IsActive, s.Description, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update source %d: %w", s.ID, err)
	}
	return nil
}

func (q *Queries) DeleteSource(ctx context.Context, id int64) error {
	if _, err := q.exec(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}
	return nil
}
