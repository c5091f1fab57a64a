package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seed wallet and escrow values.
const (
	SeedWalletXRP         = "50"
	SeedXRPUSDRate        = "0.50"
	SeedEscrowAmount      = "30"
	SeedEscrowCondition   = "3 challenges"
	SeedEscrowFulfillment = "secret123"
)

// SeedRecord is the fixed record every session starts from.
type SeedRecord struct {
	Accounts        []Account
	Expenses        []Expense
	Savings         Savings
	Wallet          WalletState
	Escrow          *EscrowState
	Payments        []Payment
	DailyChallenges []DailyChallenge
}

// Seed returns a fresh copy of the seed record with payments ordered by due date.
// The escrow threshold is set to required.
func Seed(required int) SeedRecord {
	return SeedRecord{
		Accounts: []Account{
			{ID: "chase1", Name: "Chase Checking", Balance: Cents(25075), Category: AccountCategoryChecking, Glyph: GlyphBank},
			{ID: "venmo1", Name: "Venmo", Balance: Cents(7475), Category: AccountCategoryWallet, Glyph: GlyphWallet},
		},
		Expenses: []Expense{
			{Category: "Food", Amount: decimal.NewFromInt(50)},
			{Category: "Rent", Amount: decimal.NewFromInt(100)},
			{Category: "Transportation", Amount: decimal.NewFromInt(30)},
			{Category: "Entertainment", Amount: decimal.NewFromInt(25)},
		},
		Savings: Savings{Amount: decimal.NewFromInt(75), Rate: 10},
		Wallet: WalletState{
			XRP:     SafeParse(SeedWalletXRP),
			USDRate: SafeParse(SeedXRPUSDRate),
		},
		Escrow: &EscrowState{
			Amount:             SafeParse(SeedEscrowAmount),
			Condition:          SeedEscrowCondition,
			Fulfillment:        SeedEscrowFulfillment,
			Status:             EscrowLocked,
			ChallengesRequired: required,
		},
		Payments: PaymentsByDue([]Payment{
			{Name: "Rent", Amount: decimal.NewFromInt(150), Due: seedDate(2025, time.February, 28)},
			{Name: "Phone Bill", Amount: decimal.NewFromInt(45), Due: seedDate(2025, time.February, 15)},
			{Name: "Internet", Amount: decimal.NewFromInt(60), Due: seedDate(2025, time.February, 20)},
		}),
		DailyChallenges: []DailyChallenge{
			{ID: "dc1", Title: "Track Your Spending", Description: "Record every expense you make today, no matter how small.", XP: 20},
			{ID: "dc2", Title: "No-Spend Challenge", Description: "Go the entire day without making any non-essential purchases.", XP: 30},
			{ID: "dc3", Title: "Subscription Audit", Description: "Review all your subscriptions and cancel any you don't use regularly.", XP: 25, Completed: true},
		},
	}
}

func seedDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
