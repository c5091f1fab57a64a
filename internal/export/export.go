package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/balance"
	"github.com/bwiize/dashboard/internal/domain"
)

// Sheet names written on every export.
const (
	SheetSummary    = "SUMMARY"
	SheetAccounts   = "ACCOUNTS"
	SheetExpenses   = "EXPENSES"
	SheetPayments   = "PAYMENTS"
	SheetChallenges = "CHALLENGES"
)

// Sheet is one named table. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// SheetWriter writes sheets to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// HistoryAppender is implemented by writers that keep a running history row per export.
type HistoryAppender interface {
	AppendHistory(ctx context.Context, snap domain.Snapshot, at time.Time) error
}

// Service builds the dashboard workbook from a snapshot and delegates writing.
type Service struct {
	writer SheetWriter
	clock  func() time.Time
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer, clock: time.Now}
}

// Export writes the snapshot workbook. Implements worker.AfterRecordHook.
func (s *Service) Export(ctx context.Context, snap domain.Snapshot) error {
	now := s.clock().UTC()
	if err := s.writer.Write(ctx, BuildWorkbook(snap, now)); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	if h, ok := s.writer.(HistoryAppender); ok {
		if err := h.AppendHistory(ctx, snap, now); err != nil {
			return fmt.Errorf("appending history: %w", err)
		}
	}
	return nil
}

// MultiWriter fans a workbook out to several writers.
type MultiWriter []SheetWriter

func (m MultiWriter) Write(ctx context.Context, sheets []Sheet) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, sheets); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiWriter) AppendHistory(ctx context.Context, snap domain.Snapshot, at time.Time) error {
	var errs []error
	for _, w := range m {
		if h, ok := w.(HistoryAppender); ok {
			if err := h.AppendHistory(ctx, snap, at); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// BuildWorkbook lays the snapshot out as sheets.
func BuildWorkbook(snap domain.Snapshot, at time.Time) []Sheet {
	return []Sheet{
		{Name: SheetSummary, Rows: buildSummary(snap, at)},
		{Name: SheetAccounts, Rows: buildAccounts(snap.Accounts)},
		{Name: SheetExpenses, Rows: buildExpenses(snap.Expenses)},
		{Name: SheetPayments, Rows: buildPayments(snap.Payments)},
		{Name: SheetChallenges, Rows: buildChallenges(snap.DailyChallenges)},
	}
}

// buildSummary builds the SUMMARY sheet.
// Columns: Field | Value
func buildSummary(snap domain.Snapshot, at time.Time) [][]any {
	rows := [][]any{
		{"Field", "Value"},
		{"Exported At", at.Format(time.RFC3339)},
		{"Version", snap.Version},
		{"Total Balance", toFloat(balance.Total(snap.Accounts))},
		{"Wallet Connected", snap.Wallet.Connected},
		{"Wallet XRP", toFloat(snap.Wallet.VisibleXRP())},
		{"Wallet USD", toFloat(snap.Wallet.USDValue())},
		{"Savings", toFloat(snap.Savings.Amount)},
		{"Savings Rate", snap.Savings.Rate},
		{"Challenges Completed", snap.Progress.Completed},
		{"Active Panel", snap.Carousel.Panel()},
	}
	if snap.Escrow != nil {
		rows = append(rows,
			[]any{"Escrow Status", string(snap.Escrow.Status)},
			[]any{"Escrow Amount", toFloat(snap.Escrow.Amount)},
			[]any{"Escrow Progress", snap.Escrow.ProgressPercent()},
		)
	}
	return rows
}

// buildAccounts builds the ACCOUNTS sheet with a per-category subtotal block.
// Columns: ID | Name | Type | Balance
func buildAccounts(accounts []domain.Account) [][]any {
	rows := make([][]any, 0, len(accounts)+6)
	rows = append(rows, []any{"ID", "Name", "Type", "Balance"})
	for _, a := range accounts {
		rows = append(rows, []any{a.ID, a.Name, string(a.Category), toFloat(a.Balance)})
	}

	byCategory := balance.TotalByCategory(accounts)
	for _, c := range []domain.AccountCategory{domain.AccountCategoryChecking, domain.AccountCategorySavings, domain.AccountCategoryWallet} {
		if total, ok := byCategory[c]; ok {
			rows = append(rows, []any{"", "Subtotal", string(c), toFloat(total)})
		}
	}
	rows = append(rows, []any{"", "Total", "", toFloat(balance.Total(accounts))})
	return rows
}

// buildExpenses builds the EXPENSES sheet.
// Columns: Category | Amount
func buildExpenses(expenses []domain.Expense) [][]any {
	rows := [][]any{{"Category", "Amount"}}
	for _, e := range expenses {
		rows = append(rows, []any{e.Category, toFloat(e.Amount)})
	}
	total := lo.Reduce(expenses, func(acc decimal.Decimal, e domain.Expense, _ int) decimal.Decimal {
		return acc.Add(e.Amount)
	}, decimal.Zero)
	return append(rows, []any{"Total", toFloat(total)})
}

// buildPayments builds the PAYMENTS sheet.
// Columns: Name | Amount | Due
func buildPayments(payments []domain.Payment) [][]any {
	rows := [][]any{{"Name", "Amount", "Due"}}
	for _, p := range payments {
		rows = append(rows, []any{p.Name, toFloat(p.Amount), p.Due.Format(time.DateOnly)})
	}
	return rows
}

// buildChallenges builds the CHALLENGES sheet.
// Columns: ID | Title | XP | Completed
func buildChallenges(list []domain.DailyChallenge) [][]any {
	rows := [][]any{{"ID", "Title", "XP", "Completed"}}
	for _, c := range list {
		rows = append(rows, []any{c.ID, c.Title, c.XP, c.Completed})
	}
	return rows
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
