package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsConversion(t *testing.T) {
	testCases := []struct {
		amount string
		cents  int64
	}{
		{"150.50", 15050},
		{"1000", 100000},
		{"0", 0},
		{"-12.34", -1234},
		{"0.01", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			d := decimal.RequireFromString(tc.amount)
			if got := ToCents(d); got != tc.cents {
				t.Errorf("ToCents(%s): expected %d, got %d", tc.amount, tc.cents, got)
			}
			if back := FromCents(tc.cents); !back.Equal(d) {
				t.Errorf("FromCents(%d): expected %s, got %s", tc.cents, d, back)
			}
		})
	}
}

func TestHasMoneyScale(t *testing.T) {
	if !HasMoneyScale(decimal.RequireFromString("10.25")) {
		t.Error("10.25 should fit two decimal places")
	}
	if !HasMoneyScale(decimal.RequireFromString("10.250")) {
		t.Error("10.250 should fit two decimal places")
	}
	if HasMoneyScale(decimal.RequireFromString("10.255")) {
		t.Error("10.255 should not fit two decimal places")
	}
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	b, err := json.Marshal(CategoryTotal{Category: "Food", Total: FromCents(84950)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"category":"Food","total":849.5}`
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, b)
	}
}

func TestInMoneyRange(t *testing.T) {
	testCases := []struct {
		amount string
		want   bool
	}{
		{"0", true},
		{"99999999.99", true},
		{"-99999999.99", true},
		{"100000000", false},
		{"-100000000.00", false},
		{"100000000000000000", false},
		{"92233720368547758.08", false},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			if got := InMoneyRange(decimal.RequireFromString(tc.amount)); got != tc.want {
				t.Errorf("InMoneyRange(%s): expected %t, got %t", tc.amount, tc.want, got)
			}
		})
	}
}
