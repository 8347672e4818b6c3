package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuoteExportRow is one ledger entry laid out for export.
type QuoteExportRow struct {
	Index      string // "1", "2", … ; empty for discount markers
	Heading    string // first line of the entry
	Details    []string
	IsDiscount bool
}

// QuoteExportData holds everything the xlsx and pdf quote exports need.
type QuoteExportData struct {
	Title           string
	ReferenceNumber string
	CreatedDate     string
	PreparedBy      string
	Rows            []QuoteExportRow
	Discount        string // formatted, empty when no discount applies
	Totals          []CurrencyTotal
}

// NewQuoteReference returns a reference like "Q-20261017-1A2B3C4D".
func NewQuoteReference(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "Q-" + now.Format("20060102") + "-" + id[:8]
}

// BuildQuoteExportData snapshots the ledger for export. Entries keep their
// stored text; subtotals are derived the same way the quote page shows them.
func BuildQuoteExportData(title, preparedBy string, l *Ledger, now time.Time) QuoteExportData {
	data := QuoteExportData{
		Title:           title,
		ReferenceNumber: NewQuoteReference(now),
		CreatedDate:     now.Format("02 Jan 2006"),
		PreparedBy:      preparedBy,
		Totals:          l.Subtotals(),
	}
	if data.Title == "" {
		data.Title = "Price Quote"
	}

	n := 0
	for _, entry := range l.Entries() {
		lines := strings.Split(entry, "\n")
		row := QuoteExportRow{Heading: lines[0], Details: lines[1:]}
		if IsDiscountMarker(entry) {
			row.IsDiscount = true
		} else {
			n++
			row.Index = strconv.Itoa(n)
		}
		data.Rows = append(data.Rows, row)
	}

	if d := l.Discount(); d.IsPositive() {
		data.Discount = FormatAmount(d)
	}
	return data
}
