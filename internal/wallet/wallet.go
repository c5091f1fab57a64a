// Package wallet simulates the two-phase connection handshake of a single DeFi wallet.
package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/domain"
)

// DefaultAddress is the placeholder address assigned by the simulated handshake.
const DefaultAddress = "rStudentAddress123XRP"

// Handshake is the outcome of a simulated wallet handshake.
type Handshake struct {
	Address string
	USDRate decimal.Decimal
	Err     error
}

// Handshaker performs the (simulated) external part of a wallet connection.
type Handshaker interface {
	Handshake(ctx context.Context) Handshake
}

// StaticHandshaker always succeeds with a fixed address and rate.
type StaticHandshaker struct {
	Address string
	USDRate decimal.Decimal
}

// NewStaticHandshaker creates a handshaker returning address and rate.
func NewStaticHandshaker(address string, rate decimal.Decimal) StaticHandshaker {
	if address == "" {
		address = DefaultAddress
	}
	return StaticHandshaker{Address: address, USDRate: rate}
}

func (h StaticHandshaker) Handshake(_ context.Context) Handshake {
	return Handshake{Address: h.Address, USDRate: h.USDRate}
}

// BeginConnect moves a disconnected wallet to pending and clears any previous error.
// A wallet that is already pending or connected is returned unchanged with started=false.
func BeginConnect(w domain.WalletState) (domain.WalletState, bool) {
	if w.Phase() != domain.WalletDisconnected {
		return w, false
	}
	w.Pending = true
	w.Error = ""
	return w, true
}

// CompleteConnect applies a handshake result. Only a pending wallet is affected, so a
// late resolution after the wallet left the pending phase changes nothing.
// The balance is kept: the starting balance comes from the seed record.
func CompleteConnect(w domain.WalletState, h Handshake) domain.WalletState {
	if w.Phase() != domain.WalletPending {
		return w
	}
	w.Pending = false
	if h.Err != nil {
		w.Error = h.Err.Error()
		return w
	}
	w.Connected = true
	w.Address = h.Address
	if !h.USDRate.IsZero() {
		w.USDRate = h.USDRate
	}
	return w
}

// Disconnect drops a connected wallet. The balance is retained but no longer visible.
func Disconnect(w domain.WalletState) (domain.WalletState, error) {
	if w.Phase() != domain.WalletConnected {
		return w, fmt.Errorf("%w: wallet is %s", domain.ErrInvalidTransition, w.Phase())
	}
	w.Connected = false
	w.Address = ""
	return w, nil
}

// Deposit adds amount to a connected wallet.
func Deposit(w domain.WalletState, amount decimal.Decimal) (domain.WalletState, error) {
	if !amount.IsPositive() {
		return w, fmt.Errorf("%w: deposit amount must be positive, got %s", domain.ErrValidation, amount)
	}
	if w.Phase() != domain.WalletConnected {
		return w, fmt.Errorf("%w: cannot deposit to %s wallet", domain.ErrInvalidTransition, w.Phase())
	}
	w.XRP = w.XRP.Add(amount)
	return w, nil
}

// Credit adds amount regardless of connection state. Used when escrowed funds return.
func Credit(w domain.WalletState, amount decimal.Decimal) domain.WalletState {
	w.XRP = w.XRP.Add(amount)
	return w
}
