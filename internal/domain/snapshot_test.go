package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSnapshotCloneIsDeep(t *testing.T) {
	seed := Seed(3)
	s := Snapshot{
		Accounts: seed.Accounts,
		Escrow:   seed.Escrow,
		Progress: ChallengeProgress{CountedIDs: []string{"dc1"}},
	}

	c := s.Clone()
	c.Accounts[0].Balance = decimal.NewFromInt(1)
	c.Escrow.Status = EscrowReady
	c.Progress.CountedIDs[0] = "other"

	if s.Accounts[0].Balance.Equal(decimal.NewFromInt(1)) {
		t.Error("Clone() shares the accounts slice")
	}
	if s.Escrow.Status != EscrowLocked {
		t.Error("Clone() shares the escrow pointer")
	}
	if s.Progress.CountedIDs[0] != "dc1" {
		t.Error("Clone() shares counted challenge IDs")
	}
}

func TestWalletVisibleBalance(t *testing.T) {
	w := WalletState{XRP: decimal.NewFromInt(50), USDRate: decimal.RequireFromString("0.5")}
	if !w.VisibleXRP().IsZero() {
		t.Errorf("VisibleXRP() on disconnected wallet = %s, want 0", w.VisibleXRP())
	}
	if w.Phase() != WalletDisconnected {
		t.Errorf("Phase() = %q, want disconnected", w.Phase())
	}

	w.Connected = true
	if !w.USDValue().Equal(decimal.NewFromInt(25)) {
		t.Errorf("USDValue() = %s, want 25", w.USDValue())
	}
}

func TestEscrowProgressPercent(t *testing.T) {
	e := EscrowState{ChallengesCompleted: 2, ChallengesRequired: 3}
	if got := e.ProgressPercent(); got != 66 {
		t.Errorf("ProgressPercent() = %d, want 66", got)
	}
	e.ChallengesRequired = 0
	if got := e.ProgressPercent(); got != 100 {
		t.Errorf("ProgressPercent() with zero required = %d, want 100", got)
	}
}

func TestCarouselPanel(t *testing.T) {
	c := CarouselState{Index: 2, PageCount: DefaultCarouselPages}
	if got := c.Panel(); got != "wallet" {
		t.Errorf("Panel() = %q, want wallet", got)
	}
}
