package domain

import "github.com/shopspring/decimal"

// FormatTokens renders whole token amounts without decimals and anything
// fractional with exactly two.
func FormatTokens(tokens decimal.Decimal) string {
	if tokens.IsInteger() {
		return tokens.String()
	}
	return tokens.StringFixed(2)
}
