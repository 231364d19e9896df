package services

import (
	"context"
	"time"

	"github.com/prakhar3125/ExpenseFlow-backend/events"
	"github.com/prakhar3125/ExpenseFlow-backend/logging"
	"github.com/prakhar3125/ExpenseFlow-backend/models"

	"github.com/shopspring/decimal"
)

// publish sends e and only logs failures. A ledger write that already
// committed is never reported as failed because a broker was unreachable.
func publish(ctx context.Context, p events.Publisher, logger *logging.Logger, e events.Event) {
	if p == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			logging.FieldEvent, string(e.Type),
			logging.FieldError, err)
	}
}

func sourceEvent(t events.Type, s *models.Source, at time.Time) events.Event {
	return events.Event{
		Type:       t,
		UserID:     s.UserID,
		SourceID:   s.ID,
		Balance:    decimal.NewNullDecimal(s.CurrentBalance),
		OccurredAt: at,
	}
}

func expenseEvent(t events.Type, e *models.Expense, at time.Time) events.Event {
	return events.Event{
		Type:       t,
		UserID:     e.UserID,
		SourceID:   e.SourceID,
		ExpenseID:  e.ID,
		Amount:     decimal.NewNullDecimal(e.Amount),
		OccurredAt: at,
	}
}

func balanceLowEvent(s *models.Source, at time.Time) events.Event {
	return events.Event{
		Type:       events.SourceBalanceLow,
		UserID:     s.UserID,
		SourceID:   s.ID,
		Balance:    decimal.NewNullDecimal(s.CurrentBalance),
		Threshold:  s.AlertThreshold,
		OccurredAt: at,
	}
}
