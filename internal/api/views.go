package api

import (
	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/balance"
	"github.com/bwiize/dashboard/internal/domain"
)

type walletView struct {
	Phase      domain.WalletPhase `json:"phase"`
	Address    string             `json:"address,omitempty"`
	XRP        decimal.Decimal    `json:"xrp"`
	XRPDisplay string             `json:"xrpDisplay"`
	USD        decimal.Decimal    `json:"usd"`
	USDDisplay string             `json:"usdDisplay"`
	Error      string             `json:"error,omitempty"`
}

// newWalletView shows no balance for a wallet that is not connected.
func newWalletView(w domain.WalletState) walletView {
	return walletView{
		Phase:      w.Phase(),
		Address:    w.Address,
		XRP:        w.VisibleXRP(),
		XRPDisplay: domain.FormatXRP(w.VisibleXRP()),
		USD:        w.USDValue(),
		USDDisplay: domain.FormatUSD(w.USDValue()),
		Error:      w.Error,
	}
}

type escrowView struct {
	domain.EscrowState
	ProgressPercent int    `json:"progressPercent"`
	AmountDisplay   string `json:"amountDisplay"`
}

func newEscrowView(e *domain.EscrowState) *escrowView {
	if e == nil {
		return nil
	}
	return &escrowView{
		EscrowState:     *e,
		ProgressPercent: e.ProgressPercent(),
		AmountDisplay:   domain.FormatXRP(e.Amount),
	}
}

type accountsView struct {
	Accounts     []domain.Account                           `json:"accounts"`
	Total        decimal.Decimal                            `json:"total"`
	TotalDisplay string                                     `json:"totalDisplay"`
	ByCategory   map[domain.AccountCategory]decimal.Decimal `json:"byCategory"`
}

func newAccountsView(accounts []domain.Account) accountsView {
	if accounts == nil {
		accounts = []domain.Account{}
	}
	total := balance.Total(accounts)
	return accountsView{
		Accounts:     accounts,
		Total:        total,
		TotalDisplay: domain.FormatUSD(total),
		ByCategory:   balance.TotalByCategory(accounts),
	}
}

type stateView struct {
	Version         int64                    `json:"version"`
	Loading         bool                     `json:"isLoading"`
	Loaded          bool                     `json:"isLoaded"`
	Accounts        accountsView             `json:"bankAccounts"`
	Wallet          walletView               `json:"wallet"`
	Escrow          *escrowView              `json:"escrow,omitempty"`
	Progress        domain.ChallengeProgress `json:"challengeProgress"`
	Carousel        carouselResponse         `json:"carousel"`
	Expenses        []domain.Expense         `json:"expenses"`
	Savings         domain.Savings           `json:"savings"`
	Payments        []domain.Payment         `json:"payments"`
	DailyChallenges []domain.DailyChallenge  `json:"dailyChallenges"`
	Preferences     domain.Preferences       `json:"preferences"`
}

func newStateView(s domain.Snapshot) stateView {
	return stateView{
		Version:         s.Version,
		Loading:         s.Loading,
		Loaded:          s.Loaded,
		Accounts:        newAccountsView(s.Accounts),
		Wallet:          newWalletView(s.Wallet),
		Escrow:          newEscrowView(s.Escrow),
		Progress:        s.Progress,
		Carousel:        newCarouselResponse(s.Carousel),
		Expenses:        s.Expenses,
		Savings:         s.Savings,
		Payments:        s.Payments,
		DailyChallenges: s.DailyChallenges,
		Preferences:     s.Preferences,
	}
}
