// Package balance links bank-style accounts and aggregates them into a single balance.
package balance

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/domain"
)

// Placeholder balances are drawn uniformly from [minCents, minCents+spanCents).
const (
	minCents  = 50_00
	spanCents = 500_00
)

// walletProviders are name fragments that classify a provider as a wallet-style account.
var walletProviders = []string{"venmo", "paypal"}

// Provider is a bank offered in the link dialog.
type Provider struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Glyph string `json:"icon"`
}

var providers = []Provider{
	{ID: "chase", Name: "Chase", Glyph: domain.GlyphBank},
	{ID: "bofa", Name: "Bank of America", Glyph: domain.GlyphBank},
	{ID: "wells", Name: "Wells Fargo", Glyph: domain.GlyphBank},
	{ID: "venmo", Name: "Venmo", Glyph: domain.GlyphWallet},
	{ID: "paypal", Name: "PayPal", Glyph: domain.GlyphWallet},
}

// Providers returns a copy of the provider catalogue.
func Providers() []Provider {
	return slices.Clone(providers)
}

// Linker creates linked accounts with simulated balances.
type Linker struct {
	rng   *rand.Rand
	newID func() string
}

// NewLinker creates a Linker drawing balances from rng. A nil rng uses a randomly seeded source.
func NewLinker(rng *rand.Rand) *Linker {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Linker{
		rng:   rng,
		newID: func() string { return "bank-" + uuid.NewString() },
	}
}

// Link creates an account for the named provider and returns it along with a new
// slice holding accounts plus the new account. The input slice is never modified.
func (l *Linker) Link(accounts []domain.Account, name string) (domain.Account, []domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, accounts, fmt.Errorf("%w: provider name is required", domain.ErrValidation)
	}

	category := Classify(name)
	glyph := domain.GlyphBank
	if category == domain.AccountCategoryWallet {
		glyph = domain.GlyphWallet
	}

	acc := domain.Account{
		ID:       l.newID(),
		Name:     name,
		Balance:  domain.Cents(minCents + l.rng.Int64N(spanCents)),
		Category: category,
		Glyph:    glyph,
	}

	next := make([]domain.Account, 0, len(accounts)+1)
	next = append(next, accounts...)
	next = append(next, acc)
	return acc, next, nil
}

// Classify infers the account category from the provider name.
func Classify(name string) domain.AccountCategory {
	lower := strings.ToLower(name)
	if lo.SomeBy(walletProviders, func(p string) bool { return strings.Contains(lower, p) }) {
		return domain.AccountCategoryWallet
	}
	return domain.AccountCategoryChecking
}

// Total sums all account balances. It returns zero for an empty list.
func Total(accounts []domain.Account) decimal.Decimal {
	return lo.Reduce(accounts, func(acc decimal.Decimal, a domain.Account, _ int) decimal.Decimal {
		return acc.Add(a.Balance)
	}, decimal.Zero)
}

// TotalByCategory sums balances per account category.
func TotalByCategory(accounts []domain.Account) map[domain.AccountCategory]decimal.Decimal {
	grouped := lo.GroupBy(accounts, func(a domain.Account) domain.AccountCategory { return a.Category })
	return lo.MapValues(grouped, func(group []domain.Account, _ domain.AccountCategory) decimal.Decimal {
		return Total(group)
	})
}
