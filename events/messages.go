// Package events publishes ledger changes for downstream consumers such as
// notification workers.
package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	SourceCreated    Type = "source.created"
	SourceUpdated    Type = "source.updated"
	SourceDeleted    Type = "source.deleted"
	ExpenseCreated   Type = "expense.created"
	ExpenseUpdated   Type = "expense.updated"
	ExpenseDeleted   Type = "expense.deleted"
	SourceBalanceLow Type = "source.balance_low"
)

// Event is the message body. Only the fields relevant to Type are set.
type Event struct {
	Type       Type                `json:"type"`
	UserID     int64               `json:"userId"`
	SourceID   int64               `json:"sourceId,omitempty"`
	ExpenseID  int64               `json:"expenseId,omitempty"`
	Amount     decimal.NullDecimal `json:"amount,omitzero"`
	Balance    decimal.NullDecimal `json:"balance,omitzero"`
	Threshold  decimal.NullDecimal `json:"threshold,omitzero"`
	OccurredAt time.Time           `json:"occurredAt"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
