package domain

import "github.com/shopspring/decimal"

// WalletState is the simulated DeFi wallet. Pending and Connected are mutually exclusive.
type WalletState struct {
	Connected bool            `json:"isConnected"`
	Pending   bool            `json:"isConnecting"`
	Address   string          `json:"address,omitempty"`
	XRP       decimal.Decimal `json:"xrp"`
	USDRate   decimal.Decimal `json:"usdRate"`
	Error     string          `json:"error,omitempty"`
}

// WalletPhase names the connection state of a wallet.
type WalletPhase string

const (
	WalletDisconnected WalletPhase = "disconnected"
	WalletPending      WalletPhase = "pending"
	WalletConnected    WalletPhase = "connected"
)

// Phase derives the connection phase from the flags.
func (w WalletState) Phase() WalletPhase {
	switch {
	case w.Connected:
		return WalletConnected
	case w.Pending:
		return WalletPending
	default:
		return WalletDisconnected
	}
}

// VisibleXRP is the balance a view may show: zero unless connected.
func (w WalletState) VisibleXRP() decimal.Decimal {
	if !w.Connected {
		return decimal.Zero
	}
	return w.XRP
}

// USDValue converts the visible balance at the wallet's rate.
func (w WalletState) USDValue() decimal.Decimal {
	return w.VisibleXRP().Mul(w.USDRate)
}
