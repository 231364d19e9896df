package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSourceTypeValid(t *testing.T) {
	for _, st := range SourceTypes {
		if !st.Valid() {
			t.Errorf("Expected %s to be valid", st)
		}
	}

	for _, name := range []string{"", "bank", "CHECKING", "Cash"} {
		if SourceType(name).Valid() {
			t.Errorf("Expected %q to be invalid", name)
		}
	}
}

func TestSourceBelowThreshold(t *testing.T) {
	s := Source{CurrentBalance: decimal.RequireFromString("99.99")}
	if s.BelowThreshold() {
		t.Error("Source without threshold should never alert")
	}

	s.AlertThreshold = decimal.NewNullDecimal(decimal.RequireFromString("100"))
	if !s.BelowThreshold() {
		t.Error("Expected 99.99 to be below threshold 100")
	}

	s.CurrentBalance = decimal.RequireFromString("100")
	if s.BelowThreshold() {
		t.Error("Balance equal to threshold should not alert")
	}
}
