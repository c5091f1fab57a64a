package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is spending in one category.
type Expense struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Savings is the standard savings pot and its contribution rate in percent.
type Savings struct {
	Amount decimal.Decimal `json:"amount"`
	Rate   int             `json:"rate"`
}

// Savings rate slider bounds.
const (
	MinSavingsRate = 5
	MaxSavingsRate = 20
)

// Payment is an upcoming bill.
type Payment struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Due    time.Time       `json:"due"`
}

// PaymentsByDue returns a copy of payments ordered by due date, earliest first.
// Payments due on the same day keep their relative order.
func PaymentsByDue(payments []Payment) []Payment {
	sorted := slices.Clone(payments)
	slices.SortStableFunc(sorted, func(a, b Payment) int {
		return a.Due.Compare(b.Due)
	})
	return sorted
}

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences carries session-wide presentation settings passed in at construction.
type Preferences struct {
	Theme Theme `json:"theme"`
}
