package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestXLSXWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dashboard.xlsx")
	svc := NewService(NewXLSXWriter(path))

	for range 2 {
		if err := svc.Export(context.Background(), seededSnapshot()); err != nil {
			t.Fatalf("Export() error: %v", err)
		}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	want := []string{SheetSummary, SheetAccounts, SheetExpenses, SheetPayments, SheetChallenges, SheetHistory}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	name, err := f.GetCellValue(SheetAccounts, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Chase Checking" {
		t.Errorf("ACCOUNTS!B2 = %q, want Chase Checking", name)
	}

	history, err := f.GetRows(SheetHistory)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Errorf("history rows = %d, want header + 2", len(history))
	}
}

func TestXLSXWriterAppendHistoryNeedsWorkbook(t *testing.T) {
	w := NewXLSXWriter(filepath.Join(t.TempDir(), "missing.xlsx"))
	if err := w.AppendHistory(context.Background(), seededSnapshot(), time.Now()); err == nil {
		t.Error("expected error when workbook does not exist")
	}
}
