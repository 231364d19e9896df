package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// MaxAmount is the largest magnitude a stored amount may have: ten digits,
// two of them decimals.
var MaxAmount = decimal.RequireFromString("99999999.99")

// ToCents converts an amount to integer minor units.
// Callers validate the scale first with HasMoneyScale.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(MoneyScale).Round(0).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyScale)
}

// HasMoneyScale reports whether d is representable with two decimal places.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// InMoneyRange reports whether |d| is at most MaxAmount.
func InMoneyRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxAmount)
}
