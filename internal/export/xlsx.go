package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bwiize/dashboard/internal/domain"
)

// XLSXWriter implements SheetWriter by writing an .xlsx workbook to disk. Each Write
// replaces the workbook; AppendHistory adds a row to the HISTORY sheet of the same file.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer for the workbook at path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write replaces all data sheets. An existing HISTORY sheet is carried over.
func (w *XLSXWriter) Write(_ context.Context, sheets []Sheet) error {
	history, err := w.readHistory()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9EAD3"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("renaming first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet.Name, err)
		}
		if err := writeRows(f, sheet.Name, sheet.Rows, headerStyle); err != nil {
			return err
		}
	}

	if len(history) > 0 {
		if _, err := f.NewSheet(SheetHistory); err != nil {
			return fmt.Errorf("creating sheet %s: %w", SheetHistory, err)
		}
		if err := writeRows(f, SheetHistory, history, headerStyle); err != nil {
			return err
		}
	}

	return w.save(f)
}

// AppendHistory appends one row to the HISTORY sheet, writing the header first if the
// sheet is new.
func (w *XLSXWriter) AppendHistory(_ context.Context, snap domain.Snapshot, at time.Time) error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	header, data := buildHistoryRows(snap, at)

	idx, err := f.GetSheetIndex(SheetHistory)
	if err != nil {
		return fmt.Errorf("looking up %s sheet: %w", SheetHistory, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(SheetHistory); err != nil {
			return fmt.Errorf("creating sheet %s: %w", SheetHistory, err)
		}
	}

	existing, err := f.GetRows(SheetHistory)
	if err != nil {
		return fmt.Errorf("reading %s rows: %w", SheetHistory, err)
	}
	next := len(existing) + 1
	if len(existing) == 0 {
		if err := setRow(f, SheetHistory, 1, header); err != nil {
			return err
		}
		next = 2
	}
	if err := setRow(f, SheetHistory, next, data); err != nil {
		return err
	}

	return w.save(f)
}

func (w *XLSXWriter) readHistory() ([][]any, error) {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		return nil, nil
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(SheetHistory)
	if err != nil || idx < 0 {
		return nil, nil
	}
	raw, err := f.GetRows(SheetHistory)
	if err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", SheetHistory, err)
	}

	rows := make([][]any, 0, len(raw))
	for _, r := range raw {
		row := make([]any, len(r))
		for i, v := range r {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (w *XLSXWriter) save(f *excelize.File) error {
	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", w.path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(max(len(rows[0]), 1), 1)
	if err != nil {
		return fmt.Errorf("computing header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
