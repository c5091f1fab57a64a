package export

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/bwiize/dashboard/internal/domain"
)

// SheetsWriter implements SheetWriter using the Google Sheets API.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures the sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, data []Sheet) error {
	names := lo.Map(data, func(s Sheet, _ int) string { return s.Name })
	meta, err := w.ensureSheets(ctx, names...)
	if err != nil {
		return err
	}

	_, err = w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: lo.Map(names, func(n string, _ int) string { return n + "!A:Z" }),
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: lo.Map(data, func(s Sheet, _ int) *sheets.ValueRange {
				return &sheets.ValueRange{Range: s.Name + "!A1", Values: s.Rows}
			}),
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	if err := w.formatHeaders(ctx, lo.Values(meta)); err != nil {
		return fmt.Errorf("formatting sheets: %w", err)
	}
	return nil
}

// AppendHistory ensures the HISTORY sheet exists, writes the header if the sheet is
// empty, then appends one data row.
func (w *SheetsWriter) AppendHistory(ctx context.Context, snap domain.Snapshot, at time.Time) error {
	meta, err := w.ensureSheets(ctx, SheetHistory)
	if err != nil {
		return fmt.Errorf("ensuring %s sheet: %w", SheetHistory, err)
	}

	header, data := buildHistoryRows(snap, at)

	existing, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, SheetHistory+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading %s header: %w", SheetHistory, err)
	}

	if len(existing.Values) == 0 {
		_, err = w.svc.Spreadsheets.Values.Update(
			w.spreadsheetID,
			SheetHistory+"!A1",
			&sheets.ValueRange{Values: [][]any{header}},
		).ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("writing %s header: %w", SheetHistory, err)
		}
		if err := w.formatHeaders(ctx, []sheetMeta{meta[SheetHistory]}); err != nil {
			return fmt.Errorf("formatting %s sheet: %w", SheetHistory, err)
		}
	}

	_, err = w.svc.Spreadsheets.Values.Append(
		w.spreadsheetID,
		SheetHistory+"!A:Z",
		&sheets.ValueRange{Values: [][]any{data}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %s row: %w", SheetHistory, err)
	}
	return nil
}

type sheetMeta struct {
	id    int64
	title string
}

// ensureSheets creates any of the named sheets that do not already exist and returns
// metadata for all of them.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) (map[string]sheetMeta, error) {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	meta := make(map[string]sheetMeta, len(names))
	existing := make(map[string]sheetMeta, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = sheetMeta{id: s.Properties.SheetId, title: s.Properties.Title}
	}

	var requests []*sheets.Request
	for _, name := range names {
		if m, ok := existing[name]; ok {
			meta[name] = m
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		})
	}

	if len(requests) == 0 {
		return meta, nil
	}

	resp, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating sheets: %w", err)
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			p := r.AddSheet.Properties
			meta[p.Title] = sheetMeta{id: p.SheetId, title: p.Title}
		}
	}
	return meta, nil
}

// formatHeaders makes row 1 bold on a light-green background and freezes it.
func (w *SheetsWriter) formatHeaders(ctx context.Context, metas []sheetMeta) error {
	if len(metas) == 0 {
		return nil
	}
	lightGreen := &sheets.Color{Red: 0.851, Green: 0.918, Blue: 0.827}

	var reqs []*sheets.Request
	for _, m := range metas {
		reqs = append(reqs,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{SheetId: m.id, StartRowIndex: 0, EndRowIndex: 1, ForceSendFields: []string{"SheetId", "StartRowIndex"}},
					Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: lightGreen,
						TextFormat:      &sheets.TextFormat{Bold: true},
					}},
					Fields: "userEnteredFormat(backgroundColor,textFormat)",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:         m.id,
						GridProperties:  &sheets.GridProperties{FrozenRowCount: 1},
						ForceSendFields: []string{"SheetId"},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)
	}

	_, err := w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: reqs},
	).Context(ctx).Do()
	return err
}
