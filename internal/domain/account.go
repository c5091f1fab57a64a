package domain

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// AccountCategory classifies linked accounts.
type AccountCategory string

const (
	AccountCategoryChecking AccountCategory = "checking"
	AccountCategorySavings  AccountCategory = "savings"
	AccountCategoryWallet   AccountCategory = "wallet"
)

// Glyphs shown next to linked accounts.
const (
	GlyphBank   = "🏦"
	GlyphWallet = "💸"
)

// Account is a linked bank-style account. Identity never changes after linking;
// the balance is replaced wholesale on each aggregation update.
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
	Category AccountCategory `json:"type"`
	Glyph    string          `json:"icon,omitempty"`
}

// AccountByID looks up an account by its identifier.
func AccountByID(accounts []Account, id string) (Account, bool) {
	return lo.Find(accounts, func(a Account) bool {
		return a.ID == id
	})
}

// AccountsByCategory returns the accounts of the given category.
func AccountsByCategory(accounts []Account, category AccountCategory) []Account {
	return lo.Filter(accounts, func(a Account, _ int) bool {
		return a.Category == category
	})
}
