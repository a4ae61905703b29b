package domain

import "github.com/shopspring/decimal"

// FormatMoney renders an unsigned amount with two decimals, e.g. "$75.00".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + amount.Abs().StringFixed(2)
}

// FormatSignedMoney renders a signed amount, e.g. "-$75.00" or "+$150.00".
func FormatSignedMoney(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + FormatMoney(symbol, amount)
	}
	return "+" + FormatMoney(symbol, amount)
}
