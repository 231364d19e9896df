package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"-"`
	SourceID        int64           `json:"sourceId"`
	SourceName      string          `json:"sourceName"`
	Amount          decimal.Decimal `json:"amount"`
	Vendor          string          `json:"vendor"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	TransactionDate Date            `json:"transactionDate"`
	ReceiptImageURL string          `json:"receiptImageUrl,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ExpenseRequest is the body of POST /api/expenses and PUT /api/expenses/{id}.
type ExpenseRequest struct {
	SourceID        *int64           `json:"sourceId"`
	Amount          *decimal.Decimal `json:"amount"`
	Vendor          string           `json:"vendor"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
	TransactionDate Date             `json:"transactionDate"`
	ReceiptImageURL *string          `json:"receiptImageUrl"`
}

const DefaultDateRangeDays = 30

// MaxDateRangeDays bounds the lookback to about a century.
const MaxDateRangeDays = 36500

// CategoryAll disables the category filter, compared case-insensitively.
const CategoryAll = "all"

// ExpenseFilter selects a user's expenses. SourceIDs wins over Category;
// the two are never combined.
type ExpenseFilter struct {
	DateRangeDays int
	Category      string
	SourceIDs     []int64
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
