package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/prakhar3125/ExpenseFlow-backend/database"
	"github.com/prakhar3125/ExpenseFlow-backend/events"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/models"
	"github.com/prakhar3125/ExpenseFlow-backend/repository"
)

const maxSourceNameLength = 100

// SourceService owns the source ledger: balances and ownership of sources.
type SourceService struct {
	db     *database.DB
	q      *repository.Queries
	events events.Publisher
	logger *logging.Logger
	now    func() time.Time
}

func NewSourceService(db *database.DB, publisher events.Publisher, logger *logging.Logger) *SourceService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SourceService{
		db:     db,
		q:      repository.New(db, db.Dialect),
		events: publisher,
		logger: logger.WithComponent(logging.ComponentSources),
		now:    time.Now,
	}
}

// buildSource validates req and applies the defaults for omitted fields.
func buildSource(req models.SourceRequest) (models.Source, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Source{}, validationError("name is required")
	}
	if utf8.RuneCountInString(name) > maxSourceNameLength {
		return models.Source{}, validationError("name must be at most %d characters", maxSourceNameLength)
	}

	typ := models.SourceType(req.Type)
	if !typ.Valid() {
		return models.Source{}, validationError("invalid source type %q", req.Type)
	}

	initial := decimal.Zero
	if req.InitialBalance != nil {
		initial = *req.InitialBalance
	}
	if !models.HasMoneyScale(initial) {
		return models.Source{}, validationError("initialBalance must have at most 2 decimal places")
	}
	if !models.InMoneyRange(initial) {
		return models.Source{}, validationError("initialBalance must be at most %s", models.MaxAmount)
	}
	if req.AlertThreshold.Valid {
		if !models.HasMoneyScale(req.AlertThreshold.Decimal) {
			return models.Source{}, validationError("alertThreshold must have at most 2 decimal places")
		}
		if !models.InMoneyRange(req.AlertThreshold.Decimal) {
			return models.Source{}, validationError("alertThreshold must be at most %s", models.MaxAmount)
		}
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = models.DefaultSourceColor
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return models.Source{
		Name:           name,
		Type:           typ,
		InitialBalance: initial,
		Color:          color,
		AlertThreshold: req.AlertThreshold,
		IsActive:       active,
		Description:    req.Description,
	}, nil
}

// ListSources returns every source the user owns with its current balance.
func (s *SourceService) ListSources(ctx context.Context, userID int64) ([]models.Source, error) {
	return s.q.ListSources(ctx, userID)
}

// CreateSource stores a new source for the user. Its current balance equals
// the initial balance since no expense can reference it yet.
func (s *SourceService) CreateSource(ctx context.Context, userID int64, req models.SourceRequest) (*models.Source, error) {
	src, err := buildSource(req)
	if err != nil {
		return nil, err
	}
	src.UserID = userID
	src.CreatedAt = s.now().UTC()

	if err := s.q.CreateSource(ctx, &src); err != nil {
		return nil, err
	}
	src.CurrentBalance = src.InitialBalance

	s.logger.InfoContext(ctx, "source created",
		logging.FieldUserID, userID,
		logging.FieldSourceID, src.ID,
		logging.FieldOperation, logging.OpCreate)
	publish(ctx, s.events, s.logger, sourceEvent(events.SourceCreated, &src, src.CreatedAt))
	return &src, nil
}

// loadOwnedSource fetches a source and applies the ownership guard.
func loadOwnedSource(ctx context.Context, q *repository.Queries, userID, sourceID int64) (*models.Source, error) {
	existing, err := q.GetSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Source not found or user not authorized")
		}
		return nil, err
	}
	if err := requireOwner(existing.UserID, userID, "Source"); err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdateSource overwrites every editable field of an owned source. Omitted
// optional fields fall back to their defaults.
func (s *SourceService) UpdateSource(ctx context.Context, userID, sourceID int64, req models.SourceRequest) (*models.Source, error) {
	var updated *models.Source
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := s.q.WithTx(tx)
		existing, err := loadOwnedSource(ctx, q, userID, sourceID)
		if err != nil {
			return err
		}

		src, err := buildSource(req)
		if err != nil {
			return err
		}
		src.ID = existing.ID
		src.UserID = existing.UserID
		if err := q.UpdateSource(ctx, &src); err != nil {
			return err
		}

		updated, err = q.GetSource(ctx, sourceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "source updated",
		logging.FieldUserID, userID,
		logging.FieldSourceID, sourceID,
		logging.FieldOperation, logging.OpUpdate)
	now := s.now().UTC()
	publish(ctx, s.events, s.logger, sourceEvent(events.SourceUpdated, updated, now))
	if updated.BelowThreshold() {
		publish(ctx, s.events, s.logger, balanceLowEvent(updated, now))
	}
	return updated, nil
}

// DeleteSource removes an owned source together with every expense charged
// to it. Both deletes commit or neither does.
func (s *SourceService) DeleteSource(ctx context.Context, userID, sourceID int64) error {
	var purged int64
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := s.q.WithTx(tx)
		if _, err := loadOwnedSource(ctx, q, userID, sourceID); err != nil {
			return err
		}

		var err error
		purged, err = q.DeleteExpensesBySource(ctx, sourceID)
		if err != nil {
			return err
		}
		return q.DeleteSource(ctx, sourceID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "source deleted",
		logging.FieldUserID, userID,
		logging.FieldSourceID, sourceID,
		"expenses_deleted", purged,
		logging.FieldOperation, logging.OpDelete)
	publish(ctx, s.events, s.logger, events.Event{
		Type:       events.SourceDeleted,
		UserID:     userID,
		SourceID:   sourceID,
		OccurredAt: s.now().UTC(),
	})
	return nil
}
