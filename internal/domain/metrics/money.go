package metrics

import "github.com/shopspring/decimal"

// FormatCents renders minor units as a major-unit string, e.g. 12345 -> "123.45".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
