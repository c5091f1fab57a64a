package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwiize/dashboard/internal/domain"
)

func seededSnapshot() domain.Snapshot {
	seed := domain.Seed(domain.DefaultChallengesRequired)
	return domain.Snapshot{
		Version:         7,
		Loaded:          true,
		Accounts:        seed.Accounts,
		Wallet:          seed.Wallet,
		Escrow:          seed.Escrow,
		Expenses:        seed.Expenses,
		Savings:         seed.Savings,
		Payments:        seed.Payments,
		DailyChallenges: seed.DailyChallenges,
		Carousel:        domain.CarouselState{PageCount: domain.DefaultCarouselPages},
	}
}

type mockWriter struct {
	sheets []Sheet
	err    error
}

func (m *mockWriter) Write(_ context.Context, sheets []Sheet) error {
	m.sheets = sheets
	return m.err
}

type mockHistoryWriter struct {
	mockWriter
	history int
	histErr error
}

func (m *mockHistoryWriter) AppendHistory(_ context.Context, _ domain.Snapshot, _ time.Time) error {
	m.history++
	return m.histErr
}

func findSheet(t *testing.T, sheets []Sheet, name string) Sheet {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sheet %s not found", name)
	return Sheet{}
}

func TestBuildWorkbookSheets(t *testing.T) {
	at := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	sheets := BuildWorkbook(seededSnapshot(), at)

	want := []string{SheetSummary, SheetAccounts, SheetExpenses, SheetPayments, SheetChallenges}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %d, want %d", len(sheets), len(want))
	}
	for i, name := range want {
		if sheets[i].Name != name {
			t.Errorf("sheet[%d] = %s, want %s", i, sheets[i].Name, name)
		}
	}
}

func TestBuildAccountsTotals(t *testing.T) {
	rows := findSheet(t, BuildWorkbook(seededSnapshot(), time.Now()), SheetAccounts).Rows

	if rows[0][0] != "ID" || rows[0][3] != "Balance" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "chase1" {
		t.Errorf("first account = %v, want chase1", rows[1])
	}
	last := rows[len(rows)-1]
	if last[1] != "Total" {
		t.Fatalf("last row = %v, want Total", last)
	}
	if v, ok := last[3].(float64); !ok || v != 325.5 {
		t.Errorf("total = %v, want 325.5", last[3])
	}
}

func TestBuildSummaryHidesDisconnectedWallet(t *testing.T) {
	rows := findSheet(t, BuildWorkbook(seededSnapshot(), time.Now()), SheetSummary).Rows
	for _, r := range rows {
		if r[0] == "Wallet XRP" {
			if v, ok := r[1].(float64); !ok || v != 0 {
				t.Errorf("Wallet XRP = %v, want 0 for disconnected wallet", r[1])
			}
			return
		}
	}
	t.Error("Wallet XRP row missing")
}

func TestBuildExpensesTotal(t *testing.T) {
	rows := findSheet(t, BuildWorkbook(seededSnapshot(), time.Now()), SheetExpenses).Rows
	last := rows[len(rows)-1]
	if v, ok := last[1].(float64); !ok || v != 205 {
		t.Errorf("expense total = %v, want 205", last[1])
	}
}

func TestBuildHistoryRows(t *testing.T) {
	at := time.Date(2026, 2, 24, 12, 30, 0, 0, time.UTC)
	header, data := buildHistoryRows(seededSnapshot(), at)

	if len(header) != len(data) || len(header) != 1+len(historyColumns) {
		t.Fatalf("header/data lengths = %d/%d", len(header), len(data))
	}
	if header[0] != "Recorded At" || data[0] != "2026-02-24 12:30:00" {
		t.Errorf("timestamp column = %v/%v", header[0], data[0])
	}
	if data[1] != int64(7) {
		t.Errorf("version = %v, want 7", data[1])
	}
	if data[6] != "Locked" {
		t.Errorf("escrow status = %v, want Locked", data[6])
	}
}

func TestBuildHistoryRowsWithoutEscrow(t *testing.T) {
	snap := seededSnapshot()
	snap.Escrow = nil
	_, data := buildHistoryRows(snap, time.Now())
	if data[6] != nil || data[7] != nil {
		t.Errorf("escrow columns = %v/%v, want nil", data[6], data[7])
	}
}

func TestServiceExport(t *testing.T) {
	w := &mockHistoryWriter{}
	svc := NewService(w)

	if err := svc.Export(context.Background(), seededSnapshot()); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(w.sheets) != 5 {
		t.Errorf("sheets written = %d, want 5", len(w.sheets))
	}
	if w.history != 1 {
		t.Errorf("history rows = %d, want 1", w.history)
	}
}

func TestServiceExportWriterError(t *testing.T) {
	w := &mockHistoryWriter{mockWriter: mockWriter{err: errors.New("disk full")}}
	svc := NewService(w)

	if err := svc.Export(context.Background(), seededSnapshot()); err == nil {
		t.Fatal("expected writer error")
	}
	if w.history != 0 {
		t.Errorf("history appended after failed write")
	}
}

func TestMultiWriterJoinsErrors(t *testing.T) {
	ok := &mockWriter{}
	bad := &mockHistoryWriter{mockWriter: mockWriter{err: errors.New("boom")}}
	m := MultiWriter{ok, bad}

	err := m.Write(context.Background(), BuildWorkbook(seededSnapshot(), time.Now()))
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(ok.sheets) == 0 {
		t.Error("healthy writer was skipped")
	}

	if err := m.AppendHistory(context.Background(), seededSnapshot(), time.Now()); err != nil {
		t.Errorf("AppendHistory() error: %v", err)
	}
	if bad.history != 1 {
		t.Errorf("history appends = %d, want 1", bad.history)
	}
}
