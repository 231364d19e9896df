package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
)

const expenseSelect = `SELECT e.id, e.user_id, e.source_id, s.name, e.amount_cents, e.vendor, e.category,
	e.description, e.transaction_date, e.receipt_image_url, e.created_at
	FROM expenses e JOIN sources s ON s.id = e.source_id`

// ExpenseQuery narrows a user's expenses to an inclusive date window. At
// most one of SourceIDs and Category is expected to be set; the service
// decides which.
type ExpenseQuery struct {
	UserID    int64
	Start     models.Date
	End       models.Date
	Category  string
	SourceIDs []int64
}

func (eq ExpenseQuery) where() (string, []any) {
	clauses := []string{"e.user_id = ?", "e.transaction_date >= ?", "e.transaction_date <= ?"}
	args := []any{eq.UserID, eq.Start, eq.End}

	switch {
	case len(eq.SourceIDs) > 0:
		clauses = append(clauses, "e.source_id IN ("+database.Placeholders(len(eq.SourceIDs))+")")
		for _, id := range eq.SourceIDs {
			args = append(args, id)
		}
	case eq.Category != "":
		clauses = append(clauses, "e.category = ?")
		args = append(args, eq.Category)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	var (
		e       models.Expense
		cents   int64
		receipt sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &e.SourceID, &e.SourceName, &cents, &e.Vendor, &e.Category,
		&e.Description, &e.TransactionDate, &receipt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Amount = models.FromCents(cents)
	e.ReceiptImageURL = receipt.String
	return &e, nil
}

func receiptValue(url string) sql.NullString {
	return sql.NullString{String: url, Valid: url != ""}
}

// ListExpenses returns matching expenses, newest transaction first.
func (q *Queries) ListExpenses(ctx context.Context, eq ExpenseQuery) ([]models.Expense, error) {
	where, args := eq.where()
	rows, err := q.query(ctx, expenseSelect+where+` ORDER BY e.transaction_date DESC, e.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// GetExpense loads an expense regardless of owner. Callers enforce ownership.
func (q *Queries) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	e, err := scanExpense(q.queryRow(ctx, expenseSelect+` WHERE e.id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// CreateExpense inserts e and stores the generated id on it.
func (q *Queries) CreateExpense(ctx context.Context, e *models.Expense) error {
	err := q.queryRow(ctx,
		`INSERT INTO expenses (user_id, source_id, amount_cents, vendor, category, description, transaction_date, receipt_image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		e.UserID, e.SourceID, models.ToCents(e.Amount), e.Vendor, e.Category, e.Description,
		e.TransactionDate, receiptValue(e.ReceiptImageURL), e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// UpdateExpense overwrites the mutable columns. created_at and user_id stay.
func (q *Queries) UpdateExpense(ctx context.Context, e *models.Expense) error {
	_, err := q.exec(ctx,
		`UPDATE expenses SET source_id = ?, amount_cents = ?, vendor = ?, category = ?,
		 description = ?, transaction_date = ?, receipt_image_url = ?
		 WHERE id = ?`,
		e.SourceID, models.ToCents(e.Amount), e.Vendor, e.Category,
		e.Description, e.TransactionDate, receiptValue(e.ReceiptImageURL), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return nil
}

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := q.exec(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

// DeleteExpensesBySource removes every expense charged to the source,
// whatever its date or owner, and reports how many went.
func (q *Queries) DeleteExpensesBySource(ctx context.Context, sourceID int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM expenses WHERE source_id = ?`, sourceID)
	if err != nil {
		return 0, fmt.Errorf("delete expenses of source %d: %w", sourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ListCategories returns the distinct categories the user has used.
func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.query(ctx,
		`SELECT DISTINCT category FROM expenses WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// SumByCategory totals matching expenses per category, largest first.
func (q *Queries) SumByCategory(ctx context.Context, eq ExpenseQuery) ([]models.CategoryTotal, error) {
	where, args := eq.where()
	rows, err := q.query(ctx,
		`SELECT e.category, CAST(SUM(e.amount_cents) AS BIGINT) AS total FROM expenses e`+where+
			` GROUP BY e.category ORDER BY total DESC, e.category`, args...)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	totals := []models.CategoryTotal{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, models.CategoryTotal{Category: category, Total: models.FromCents(cents)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}
