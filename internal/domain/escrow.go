package domain

import "github.com/shopspring/decimal"

// EscrowStatus is the lifecycle state of an escrow.
type EscrowStatus string

const (
	EscrowLocked   EscrowStatus = "Locked"
	EscrowReady    EscrowStatus = "Ready"
	EscrowReleased EscrowStatus = "Released"
)

// DefaultChallengesRequired is the number of completed challenges that unlocks an escrow.
const DefaultChallengesRequired = 3

// EscrowState holds funds locked until enough challenges are completed.
// Condition and Fulfillment are display-only descriptors.
type EscrowState struct {
	Amount              decimal.Decimal `json:"amount"`
	Condition           string          `json:"condition"`
	Fulfillment         string          `json:"fulfillment"`
	Status              EscrowStatus    `json:"status"`
	ChallengesCompleted int             `json:"challengesCompleted"`
	ChallengesRequired  int             `json:"totalChallengesRequired"`
}

// IsTerminal reports whether the escrow has been released.
func (e EscrowState) IsTerminal() bool {
	return e.Status == EscrowReleased
}

// ProgressPercent is the share of required challenges completed, 0..100.
func (e EscrowState) ProgressPercent() int {
	if e.ChallengesRequired <= 0 {
		return 100
	}
	return min(e.ChallengesCompleted, e.ChallengesRequired) * 100 / e.ChallengesRequired
}
