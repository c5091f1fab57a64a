package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/challenge"
	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/escrow"
	"github.com/bwiize/dashboard/internal/wallet"
)

// Load starts the simulated initial fetch. The seed record is applied after LoadDelay.
// Calling Load again while loading or after loading is a no-op.
func (e *Engine) Load() domain.Snapshot {
	snap, _ := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if s.Loaded || s.Loading {
			fx.unchanged = true
			return nil
		}
		s.Loading = true
		fx.after(e.opts.LoadDelay, e.finishLoad)
		return nil
	})
	return snap
}

func (e *Engine) finishLoad() {
	snap, _ := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if s.Loaded {
			fx.unchanged = true
			return nil
		}
		seed := domain.Seed(e.opts.ChallengesRequired)

		s.Accounts = seed.Accounts
		s.Expenses = seed.Expenses
		s.Savings = seed.Savings
		s.Wallet = seed.Wallet
		s.Payments = seed.Payments
		// Challenges completed while loading stay completed.
		daily := seed.DailyChallenges
		for _, id := range s.Progress.CountedIDs {
			daily = challenge.MarkCompleted(daily, id)
		}
		s.DailyChallenges = daily
		if seed.Escrow != nil {
			synced, becameReady := escrow.SyncProgress(*seed.Escrow, s.Progress.Completed)
			s.Escrow = &synced
			if becameReady {
				fx.notify(domain.NotifyEscrowReady, &synced.Amount, synced.Condition)
			}
		}
		s.Loading = false
		s.Loaded = true
		return nil
	})
	slog.Info("Engine: financial data loaded", "version", snap.Version, "accounts", len(snap.Accounts))
}

// LinkBank links a new account for the named provider and returns it.
func (e *Engine) LinkBank(provider string) (domain.Account, error) {
	var linked domain.Account
	_, err := e.apply(func(s *domain.Snapshot, _ *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		acct, accounts, err := e.opts.Linker.Link(s.Accounts, provider)
		if err != nil {
			return err
		}
		s.Accounts = accounts
		linked = acct
		return nil
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("linking bank: %w", err)
	}
	slog.Info("Engine: bank linked", "id", linked.ID, "name", linked.Name, "category", linked.Category)
	return linked, nil
}

// ConnectWallet starts the simulated handshake. Only one handshake can be pending; calls
// while pending or connected change nothing.
func (e *Engine) ConnectWallet() (domain.Snapshot, error) {
	snap, err := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		w, started := wallet.BeginConnect(s.Wallet)
		if !started {
			fx.unchanged = true
			return nil
		}
		s.Wallet = w
		fx.after(e.opts.ConnectDelay, e.finishConnect)
		return nil
	})
	if err != nil {
		return snap, fmt.Errorf("connecting wallet: %w", err)
	}
	return snap, nil
}

func (e *Engine) finishConnect() {
	h := e.opts.Handshaker.Handshake(context.Background())
	snap, _ := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if s.Wallet.Phase() != domain.WalletPending {
			fx.unchanged = true
			return nil
		}
		s.Wallet = wallet.CompleteConnect(s.Wallet, h)
		if h.Err != nil {
			fx.notify(domain.NotifyWalletConnectFailed, nil, h.Err.Error())
			return nil
		}
		fx.notify(domain.NotifyWalletConnected, nil, s.Wallet.Address)
		return nil
	})
	if h.Err != nil {
		slog.Warn("Engine: wallet handshake failed", "error", h.Err)
		return
	}
	slog.Info("Engine: wallet connected", "address", snap.Wallet.Address, "version", snap.Version)
}

// DisconnectWallet disconnects a connected wallet.
func (e *Engine) DisconnectWallet() (domain.Snapshot, error) {
	snap, err := e.apply(func(s *domain.Snapshot, _ *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		w, err := wallet.Disconnect(s.Wallet)
		if err != nil {
			return err
		}
		s.Wallet = w
		return nil
	})
	if err != nil {
		return snap, fmt.Errorf("disconnecting wallet: %w", err)
	}
	return snap, nil
}

// DepositXRP adds amount to a connected wallet.
func (e *Engine) DepositXRP(amount decimal.Decimal) (domain.Snapshot, error) {
	snap, err := e.apply(func(s *domain.Snapshot, _ *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		w, err := wallet.Deposit(s.Wallet, amount)
		if err != nil {
			return err
		}
		s.Wallet = w
		return nil
	})
	if err != nil {
		return snap, fmt.Errorf("depositing XRP: %w", err)
	}
	return snap, nil
}

// CreateEscrow locks a new escrow seeded from the current challenge progress.
func (e *Engine) CreateEscrow(in escrow.CreateInput) (domain.EscrowState, error) {
	var created domain.EscrowState
	_, err := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		next, ready, err := escrow.Create(s.Escrow, in, s.Progress.Completed, s.Progress.Required)
		if err != nil {
			return err
		}
		s.Escrow = &next
		created = next
		if ready {
			fx.notify(domain.NotifyEscrowReady, &next.Amount, next.Condition)
		}
		return nil
	})
	if err != nil {
		return domain.EscrowState{}, fmt.Errorf("creating escrow: %w", err)
	}
	slog.Info("Engine: escrow created", "amount", created.Amount.String(), "status", created.Status)
	return created, nil
}

// ReleaseEscrow releases a Ready escrow into the wallet balance and returns the amount.
// The wallet is credited even when disconnected; it exists from the moment data loads.
func (e *Engine) ReleaseEscrow() (decimal.Decimal, error) {
	var released decimal.Decimal
	_, err := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		if s.Escrow == nil {
			return fmt.Errorf("%w: no escrow", domain.ErrInvalidTransition)
		}
		next, amount, err := escrow.Release(*s.Escrow)
		if err != nil {
			return err
		}
		s.Escrow = &next
		s.Wallet = wallet.Credit(s.Wallet, amount)
		released = amount
		fx.notify(domain.NotifyEscrowReleased, &amount, "")
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("releasing escrow: %w", err)
	}
	slog.Info("Engine: escrow released", "amount", released.String())
	return released, nil
}

// ChallengeCompleted counts one completion, forwards the counter to the escrow and, on
// first reaching the threshold, schedules the celebration notification. Completions are
// accepted before the financial data has loaded; the seed escrow picks them up on load.
func (e *Engine) ChallengeCompleted(challengeID string) (domain.Snapshot, error) {
	id := strings.TrimSpace(challengeID)
	snap, err := e.apply(func(s *domain.Snapshot, fx *effects) error {
		res := e.counter.Complete(s.Progress, id)
		daily := challenge.MarkCompleted(s.DailyChallenges, id)
		if !res.Counted &&
			slices.Equal(res.Progress.CountedIDs, s.Progress.CountedIDs) &&
			slices.Equal(daily, s.DailyChallenges) {
			fx.unchanged = true
			return nil
		}

		s.Progress = res.Progress
		s.DailyChallenges = daily
		if s.Escrow != nil {
			synced, becameReady := escrow.SyncProgress(*s.Escrow, s.Progress.Completed)
			s.Escrow = &synced
			if becameReady {
				fx.notify(domain.NotifyEscrowReady, &synced.Amount, synced.Condition)
			}
		}

		if res.ReachedThreshold {
			if e.opts.CelebrationDelay <= 0 {
				fx.notify(domain.NotifyChallengeCelebration, nil, celebrationMessage(s.Progress))
			} else {
				fx.after(e.opts.CelebrationDelay, e.celebrate)
			}
		}
		return nil
	})
	if err != nil {
		return snap, fmt.Errorf("completing challenge %q: %w", id, err)
	}
	return snap, nil
}

func (e *Engine) celebrate() {
	_, _ = e.apply(func(s *domain.Snapshot, fx *effects) error {
		fx.unchanged = true
		fx.notify(domain.NotifyChallengeCelebration, nil, celebrationMessage(s.Progress))
		return nil
	})
}

func celebrationMessage(p domain.ChallengeProgress) string {
	return fmt.Sprintf("completed %d of %d challenges", p.Completed, p.Required)
}

// SetSavingsRate moves the savings slider. The rate is clamped to the slider bounds.
func (e *Engine) SetSavingsRate(rate int) (domain.Savings, error) {
	snap, err := e.apply(func(s *domain.Snapshot, fx *effects) error {
		if err := requireLoaded(s); err != nil {
			return err
		}
		clamped := min(max(rate, domain.MinSavingsRate), domain.MaxSavingsRate)
		if clamped == s.Savings.Rate {
			fx.unchanged = true
			return nil
		}
		s.Savings.Rate = clamped
		return nil
	})
	if err != nil {
		return domain.Savings{}, fmt.Errorf("setting savings rate: %w", err)
	}
	return snap.Savings, nil
}
