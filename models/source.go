package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType is the closed set of money container kinds.
type SourceType string

const (
	SourceTypeUPI        SourceType = "UPI"
	SourceTypeBank       SourceType = "BANK"
	SourceTypeCash       SourceType = "CASH"
	SourceTypeCard       SourceType = "CARD"
	SourceTypeInvestment SourceType = "INVESTMENT"
	SourceTypeSavings    SourceType = "SAVINGS"
)

var SourceTypes = []SourceType{
	SourceTypeUPI,
	SourceTypeBank,
	SourceTypeCash,
	SourceTypeCard,
	SourceTypeInvestment,
	SourceTypeSavings,
}

// Valid reports whether t names a known member. Matching is case-sensitive.
func (t SourceType) Valid() bool {
	for _, known := range SourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

const DefaultSourceColor = "#3B82F6"

type Source struct {
	ID             int64               `json:"id"`
	UserID         int64               `json:"-"`
	Name           string              `json:"name"`
	Type           SourceType          `json:"type"`
	InitialBalance decimal.Decimal     `json:"initialBalance"`
	CurrentBalance decimal.Decimal     `json:"currentBalance"`
	Color          string              `json:"color"`
	AlertThreshold decimal.NullDecimal `json:"alertThreshold"`
	IsActive       bool                `json:"isActive"`
	Description    string              `json:"description"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// BelowThreshold reports whether the current balance has dropped under the
// alert threshold. Sources without a threshold never alert.
func (s *Source) BelowThreshold() bool {
	return s.AlertThreshold.Valid && s.CurrentBalance.LessThan(s.AlertThreshold.Decimal)
}

// SourceRequest is the body of POST and PUT /api/sources.
type SourceRequest struct {
	Name           string              `json:"name"`
	Type           string              `json:"type"`
	InitialBalance *decimal.Decimal    `json:"initialBalance"`
	Color          string              `json:"color"`
	AlertThreshold decimal.NullDecimal `json:"alertThreshold"`
	IsActive       *bool               `json:"isActive"`
	Description    string              `json:"description"`
}
