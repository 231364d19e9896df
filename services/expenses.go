package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/events"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

const (
	maxVendorLength   = 255
	maxCategoryLength = 100
)

// ExpenseService lists, records and edits expenses.
type ExpenseService struct {
	db     *database.DB
	q      *repository.Queries
	events events.Publisher
	logger *logging.Logger
	now    func() time.Time
}

func NewExpenseService(db *database.DB, publisher events.Publisher, logger *logging.Logger) *ExpenseService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ExpenseService{
		db:     db,
		q:      repository.New(db, db.Dialect),
		events: publisher,
		logger: logger.WithComponent(logging.ComponentExpenses),
		now:    time.Now,
	}
}

// query turns a filter into a repository query. sourceIds take precedence
// over category, and "all" (any case) means no category filter.
func (s *ExpenseService) query(userID int64, f models.ExpenseFilter) (repository.ExpenseQuery, error) {
	if f.DateRangeDays < 0 {
		return repository.ExpenseQuery{}, validationError("dateRange must not be negative")
	}
	if f.DateRangeDays > models.MaxDateRangeDays {
		return repository.ExpenseQuery{}, validationError("dateRange must be at most %d days", models.MaxDateRangeDays)
	}

	end := models.DateOf(s.now())
	q := repository.ExpenseQuery{
		UserID: userID,
		Start:  end.AddDays(-f.DateRangeDays),
		End:    end,
	}

	switch {
	case len(f.SourceIDs) > 0:
		q.SourceIDs = f.SourceIDs
	case f.Category != "" && !strings.EqualFold(f.Category, models.CategoryAll):
		q.Category = f.Category
	}
	return q, nil
}

// ListExpenses returns the user's expenses dated within the last
// DateRangeDays days, today included, narrowed by at most one filter.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	q, err := s.query(userID, f)
	if err != nil {
		return nil, err
	}
	return s.q.ListExpenses(ctx, q)
}

// Summary totals the filtered expenses per category.
func (s *ExpenseService) Summary(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.CategoryTotal, error) {
	q, err := s.query(userID, f)
	if err != nil {
		return nil, err
	}
	return s.q.SumByCategory(ctx, q)
}

// Categories lists the distinct categories the user has recorded.
func (s *ExpenseService) Categories(ctx context.Context, userID int64) ([]string, error) {
	return s.q.ListCategories(ctx, userID)
}

func validateExpense(req models.ExpenseRequest) error {
	if req.SourceID == nil {
		return validationError("sourceId is required")
	}
	if req.Amount == nil {
		return validationError("amount is required")
	}
	if !models.HasMoneyScale(*req.Amount) {
		return validationError("amount must have at most 2 decimal places")
	}
	if !models.InMoneyRange(*req.Amount) {
		return validationError("amount must be at most %s", models.MaxAmount)
	}

	vendor := strings.TrimSpace(req.Vendor)
	if vendor == "" {
		return validationError("vendor is required")
	}
	if utf8.RuneCountInString(vendor) > maxVendorLength {
		return validationError("vendor must be at most %d characters", maxVendorLength)
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return validationError("category is required")
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return validationError("category must be at most %d characters", maxCategoryLength)
	}

	if req.TransactionDate.IsZero() {
		return validationError("transactionDate is required")
	}
	return nil
}

// loadSource checks that a referenced source exists. Ownership is not
// checked here.
func loadSource(ctx context.Context, q *repository.Queries, sourceID int64) (*models.Source, error) {
	src, err := q.GetSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Source not found")
		}
		return nil, err
	}
	return src, nil
}

// AddExpense records an expense against an existing source.
func (s *ExpenseService) AddExpense(ctx context.Context, userID int64, req models.ExpenseRequest) (*models.Expense, error) {
	if err := validateExpense(req); err != nil {
		return nil, err
	}

	src, err := loadSource(ctx, s.q, *req.SourceID)
	if err != nil {
		return nil, err
	}

	e := models.Expense{
		UserID:          userID,
		SourceID:        src.ID,
		SourceName:      src.Name,
		Amount:          *req.Amount,
		Vendor:          strings.TrimSpace(req.Vendor),
		Category:        strings.TrimSpace(req.Category),
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
		CreatedAt:       s.now().UTC(),
	}
	if req.ReceiptImageURL != nil {
		e.ReceiptImageURL = *req.ReceiptImageURL
	}

	if err := s.q.CreateExpense(ctx, &e); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "expense created",
		logging.FieldUserID, userID,
		logging.FieldExpenseID, e.ID,
		logging.FieldSourceID, e.SourceID,
		logging.FieldOperation, logging.OpCreate)
	publish(ctx, s.events, s.logger, expenseEvent(events.ExpenseCreated, &e, e.CreatedAt))
	s.checkBalance(ctx, e.SourceID)
	return &e, nil
}

// loadOwnedExpense fetches an expense and applies the ownership guard.
func loadOwnedExpense(ctx context.Context, q *repository.Queries, userID, expenseID int64) (*models.Expense, error) {
	existing, err := q.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Expense not found or user not authorized")
		}
		return nil, err
	}
	if err := requireOwner(existing.UserID, userID, "Expense"); err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdateExpense overwrites an owned expense. The receipt URL changes only
// when the request carries one; the creation time never changes.
func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, expenseID int64, req models.ExpenseRequest) (*models.Expense, error) {
	var updated *models.Expense
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := s.q.WithTx(tx)
		existing, err := loadOwnedExpense(ctx, q, userID, expenseID)
		if err != nil {
			return err
		}
		if err := validateExpense(req); err != nil {
			return err
		}
		if _, err := loadSource(ctx, q, *req.SourceID); err != nil {
			return err
		}

		e := *existing
		e.SourceID = *req.SourceID
		e.Amount = *req.Amount
		e.Vendor = strings.TrimSpace(req.Vendor)
		e.Category = strings.TrimSpace(req.Category)
		e.Description = req.Description
		e.TransactionDate = req.TransactionDate
		if req.ReceiptImageURL != nil {
			e.ReceiptImageURL = *req.ReceiptImageURL
		}
		if err := q.UpdateExpense(ctx, &e); err != nil {
			return err
		}

		updated, err = q.GetExpense(ctx, expenseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "expense updated",
		logging.FieldUserID, userID,
		logging.FieldExpenseID, expenseID,
		logging.FieldOperation, logging.OpUpdate)
	publish(ctx, s.events, s.logger, expenseEvent(events.ExpenseUpdated, updated, s.now().UTC()))
	s.checkBalance(ctx, updated.SourceID)
	return updated, nil
}

// DeleteExpense removes an owned expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	var deleted *models.Expense
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := s.q.WithTx(tx)
		existing, err := loadOwnedExpense(ctx, q, userID, expenseID)
		if err != nil {
			return err
		}
		deleted = existing
		return q.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "expense deleted",
		logging.FieldUserID, userID,
		logging.FieldExpenseID, expenseID,
		logging.FieldOperation, logging.OpDelete)
	publish(ctx, s.events, s.logger, expenseEvent(events.ExpenseDeleted, deleted, s.now().UTC()))
	return nil
}

// checkBalance publishes a low-balance alert when the source has fallen
// under its threshold.
func (s *ExpenseService) checkBalance(ctx context.Context, sourceID int64) {
	src, err := s.q.GetSource(ctx, sourceID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to check source balance",
			logging.FieldSourceID, sourceID,
			logging.FieldError, err)
		return
	}
	if src.BelowThreshold() {
		s.logger.InfoContext(ctx, "source balance below threshold",
			logging.FieldSourceID, src.ID,
			"balance", src.CurrentBalance.StringFixed(models.MoneyScale),
			"threshold", src.AlertThreshold.Decimal.StringFixed(models.MoneyScale))
		publish(ctx, s.events, s.logger, balanceLowEvent(src, s.now().UTC()))
	}
}
