package domain

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const displayPrecision = 2

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Cents builds a decimal amount from an integer number of cents.
func Cents(c int64) decimal.Decimal {
	return decimal.New(c, -displayPrecision)
}

// FormatUSD renders an amount as "$1,234.56".
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + formatFixed(d)
}

// FormatXRP renders an amount as "1,234.56 XRP".
func FormatXRP(d decimal.Decimal) string {
	return formatFixed(d) + " XRP"
}

// formatFixed rounds to two decimals and adds thousands separators.
func formatFixed(d decimal.Decimal) string {
	rounded := d.Round(displayPrecision)
	whole := rounded.Truncate(0)
	frac := rounded.Sub(whole).Abs().StringFixed(displayPrecision)
	return humanize.Comma(whole.IntPart()) + strings.TrimPrefix(frac, "0")
}
