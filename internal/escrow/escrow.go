// Package escrow implements the Locked → Ready → Released lifecycle of a challenge-gated escrow.
package escrow

import (
	"fmt"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/domain"
)

const fulfillmentLen = 12

// CreateInput describes a new escrow. Empty descriptors fall back to defaults.
type CreateInput struct {
	Amount      decimal.Decimal
	Condition   string
	Fulfillment string
}

// Create seeds a new Locked escrow. It is allowed only when there is no escrow or the
// current one has been released. Progress is taken from the external counter, not reset,
// so the new escrow may start Ready; ready then reports that the threshold was met.
func Create(current *domain.EscrowState, in CreateInput, progress, required int) (domain.EscrowState, bool, error) {
	if current != nil && !current.IsTerminal() {
		return domain.EscrowState{}, false, fmt.Errorf("%w: escrow already %s", domain.ErrInvalidTransition, current.Status)
	}
	if !in.Amount.IsPositive() {
		return domain.EscrowState{}, false, fmt.Errorf("%w: escrow amount must be positive, got %s", domain.ErrValidation, in.Amount)
	}
	if required <= 0 {
		required = domain.DefaultChallengesRequired
	}

	condition := strings.TrimSpace(in.Condition)
	if condition == "" {
		condition = fmt.Sprintf("%d challenges", required)
	}
	fulfillment := strings.TrimSpace(in.Fulfillment)
	if fulfillment == "" {
		fulfillment = uniuri.NewLen(fulfillmentLen)
	}

	e := domain.EscrowState{
		Amount:              in.Amount,
		Condition:           condition,
		Fulfillment:         fulfillment,
		Status:              domain.EscrowLocked,
		ChallengesCompleted: clamp(progress, required),
		ChallengesRequired:  required,
	}
	if e.ChallengesCompleted >= required {
		e.Status = domain.EscrowReady
		return e, true, nil
	}
	return e, false, nil
}

// SyncProgress mirrors the external challenge counter into the escrow. The counter never
// regresses and is capped at the threshold. becameReady is true only on the call where
// the counter first crosses the threshold. A released escrow is returned unchanged.
func SyncProgress(e domain.EscrowState, completed int) (domain.EscrowState, bool) {
	if e.IsTerminal() {
		return e, false
	}
	prev := e.ChallengesCompleted
	next := max(prev, clamp(completed, e.ChallengesRequired))
	e.ChallengesCompleted = next

	if prev < e.ChallengesRequired && e.ChallengesRequired <= next {
		e.Status = domain.EscrowReady
		return e, true
	}
	return e, false
}

// Release ends a Ready escrow and returns the amount to hand back to the wallet.
func Release(e domain.EscrowState) (domain.EscrowState, decimal.Decimal, error) {
	if e.Status != domain.EscrowReady {
		return e, decimal.Zero, fmt.Errorf("%w: escrow is %s, not %s", domain.ErrInvalidTransition, e.Status, domain.EscrowReady)
	}
	e.Status = domain.EscrowReleased
	return e, e.Amount, nil
}

func clamp(n, upper int) int {
	return min(max(n, 0), upper)
}
