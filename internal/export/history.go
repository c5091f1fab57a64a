package export

import (
	"time"

	"github.com/bwiize/dashboard/internal/balance"
	"github.com/bwiize/dashboard/internal/domain"
)

// SheetHistory receives one appended row per export.
const SheetHistory = "HISTORY"

// historyCol describes one column in the HISTORY sheet.
type historyCol struct {
	header string
	value  func(domain.Snapshot) any
}

// historyColumns defines the data columns after the leading timestamp column.
var historyColumns = []historyCol{
	{"Version", func(s domain.Snapshot) any { return s.Version }},
	{"Total Balance", func(s domain.Snapshot) any { return toFloat(balance.Total(s.Accounts)) }},
	{"Accounts", func(s domain.Snapshot) any { return len(s.Accounts) }},
	{"Wallet XRP", func(s domain.Snapshot) any { return toFloat(s.Wallet.VisibleXRP()) }},
	{"Wallet USD", func(s domain.Snapshot) any { return toFloat(s.Wallet.USDValue()) }},
	{"Escrow Status", func(s domain.Snapshot) any {
		if s.Escrow == nil {
			return nil
		}
		return string(s.Escrow.Status)
	}},
	{"Escrow Amount", func(s domain.Snapshot) any {
		if s.Escrow == nil {
			return nil
		}
		return toFloat(s.Escrow.Amount)
	}},
	{"Challenges", func(s domain.Snapshot) any { return s.Progress.Completed }},
	{"Savings Rate", func(s domain.Snapshot) any { return s.Savings.Rate }},
}

// buildHistoryRows builds the header row and one data row for the HISTORY sheet.
func buildHistoryRows(snap domain.Snapshot, at time.Time) (header, data []any) {
	header = make([]any, 1+len(historyColumns))
	data = make([]any, 1+len(historyColumns))
	header[0] = "Recorded At"
	data[0] = at.UTC().Format("2006-01-02 15:04:05")
	for i, col := range historyColumns {
		header[i+1] = col.header
		data[i+1] = col.value(snap)
	}
	return header, data
}
