package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one immutable version of the whole dashboard state.
// Every mutation produces a new Snapshot with Version incremented by one.
type Snapshot struct {
	Version         int64             `json:"version"`
	Loading         bool              `json:"isLoading"`
	Loaded          bool              `json:"isLoaded"`
	Accounts        []Account         `json:"bankAccounts"`
	Wallet          WalletState       `json:"wallet"`
	Escrow          *EscrowState      `json:"escrow,omitempty"`
	Progress        ChallengeProgress `json:"challengeProgress"`
	Carousel        CarouselState     `json:"carousel"`
	Expenses        []Expense         `json:"expenses"`
	Savings         Savings           `json:"savings"`
	Payments        []Payment         `json:"payments"`
	DailyChallenges []DailyChallenge  `json:"dailyChallenges"`
	Preferences     Preferences       `json:"preferences"`
}

// Clone returns a deep copy so callers can never alias engine-owned slices.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Accounts = slices.Clone(s.Accounts)
	c.Expenses = slices.Clone(s.Expenses)
	c.Payments = slices.Clone(s.Payments)
	c.DailyChallenges = slices.Clone(s.DailyChallenges)
	c.Progress.CountedIDs = slices.Clone(s.Progress.CountedIDs)
	if s.Escrow != nil {
		e := *s.Escrow
		c.Escrow = &e
	}
	return c
}

// NotificationKind identifies a one-shot outbound signal.
type NotificationKind string

const (
	NotifyEscrowReady          NotificationKind = "escrow.ready"
	NotifyEscrowReleased       NotificationKind = "escrow.released"
	NotifyChallengeCelebration NotificationKind = "challenge.celebration"
	NotifyWalletConnected      NotificationKind = "wallet.connected"
	NotifyWalletConnectFailed  NotificationKind = "wallet.connect_failed"
)

// Notification is a one-shot signal raised alongside a snapshot, e.g. for a modal.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Version int64            `json:"version"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Message string           `json:"message,omitempty"`
	At      time.Time        `json:"at"`
}
