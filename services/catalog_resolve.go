package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrIncompleteSelection means at least one selector is still unset.
	// It is a normal state: the UI simply withholds the price.
	ErrIncompleteSelection = errors.New("selection incomplete")

	// ErrNoMatchingRow means a complete selection matched no catalog row.
	ErrNoMatchingRow = errors.New("no catalog row matches the selection")
)

// DefaultBifocalSurcharge is charged when a loupe row has no bifocal price.
var DefaultBifocalSurcharge = decimal.NewFromInt(100)

// SelectionPath is the market plus one value per selector level.
// An empty string is the unset placeholder.
type SelectionPath struct {
	Market string
	Levels []string
}

// NormalizePath clears every choice that is no longer valid for the table:
// a market missing from the header row, or a level value outside its
// candidate set. Once a level is cleared every later level is cleared too.
// The returned path always has one entry per layout level.
func NormalizePath(t *Table, p SelectionPath) SelectionPath {
	out := SelectionPath{Levels: make([]string, len(t.Layout.Levels))}
	if t.MarketColumn(p.Market) != noColumn {
		out.Market = p.Market
	}

	for i := range out.Levels {
		if i >= len(p.Levels) || p.Levels[i] == "" {
			break
		}
		if !contains(t.Candidates(out.Levels, i), p.Levels[i]) {
			break
		}
		out.Levels[i] = p.Levels[i]
	}
	return out
}

// Complete reports whether the market and every level are set.
func (p SelectionPath) Complete() bool {
	if p.Market == "" {
		return false
	}
	for _, v := range p.Levels {
		if v == "" {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Price is a catalog amount. Valid is false when the cell was missing or
// not a number; such prices display as "N/A".
type Price struct {
	Value decimal.Decimal
	Valid bool
}

// ParsePrice reads a catalog cell. Thousands separators are accepted.
func ParsePrice(cell string) Price {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}
	}
	return Price{Value: d, Valid: true}
}

// String renders the price with two decimals, or "N/A".
func (p Price) String() string {
	if !p.Valid {
		return NotAvailable
	}
	return FormatAmount(p.Value)
}

// BundleBreakdown carries the component prices shown for a school bundle.
type BundleBreakdown struct {
	Loupe    Price
	Light    Price
	Discount Price
}

// ResolvedQuote is the price information for one complete selection.
type ResolvedQuote struct {
	Mode     Mode
	Market   string
	Levels   []string
	Amount   Price
	Currency string
	Part     string
	Contents string

	// Bifocal is set only for loupes with the bifocal option.
	Bifocal *decimal.Decimal
	// Bundle is set only for school bundles; Amount is then the bundle price.
	Bundle *BundleBreakdown
}

// ResolveOptions carries the per-request flags that affect resolution.
type ResolveOptions struct {
	Bifocal         bool
	BifocalFallback decimal.Decimal
}

// Resolve looks up the price information for a selection path. The path is
// normalized first, so stale downstream choices count as unset.
func Resolve(t *Table, p SelectionPath, opts ResolveOptions) (*ResolvedQuote, error) {
	path := NormalizePath(t, p)
	if !path.Complete() || !sameLevels(path.Levels, p.Levels) || path.Market != p.Market {
		return nil, ErrIncompleteSelection
	}

	priceCol := t.MarketColumn(path.Market)
	row, ok := t.lookupRow(path.Levels)
	if !ok || priceCol == noColumn {
		return nil, ErrNoMatchingRow
	}
	return quoteFromRow(t, row, path, priceCol, opts), nil
}

func sameLevels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func quoteFromRow(t *Table, row []string, path SelectionPath, priceCol int, opts ResolveOptions) *ResolvedQuote {
	l := t.Layout
	q := &ResolvedQuote{
		Mode:     t.Mode,
		Market:   path.Market,
		Levels:   append([]string(nil), path.Levels...),
		Currency: strings.TrimSpace(t.Cell(l.CurrencyRow, priceCol)),
	}

	if l.Bundle {
		q.Bundle = &BundleBreakdown{
			Loupe:    ParsePrice(cellOf(row, priceCol)),
			Light:    ParsePrice(cellOf(row, priceCol+1)),
			Discount: ParsePrice(cellOf(row, priceCol+2)),
		}
		q.Amount = ParsePrice(cellOf(row, priceCol+3))
	} else {
		q.Amount = ParsePrice(cellOf(row, priceCol))
	}

	switch {
	case l.PartCol != noColumn:
		q.Part = strings.TrimSpace(cellOf(row, l.PartCol))
	case l.PartOffset != 0:
		q.Part = strings.TrimSpace(cellOf(row, priceCol+l.PartOffset))
	}

	if l.ContentsLast && t.Width > 0 {
		q.Contents = strings.TrimSpace(cellOf(row, t.Width-1))
	}

	if l.BifocalOffset != 0 && opts.Bifocal {
		surcharge := opts.BifocalFallback
		if surcharge.IsZero() {
			surcharge = DefaultBifocalSurcharge
		}
		if p := ParsePrice(cellOf(row, priceCol+l.BifocalOffset)); p.Valid {
			surcharge = p.Value
		}
		q.Bifocal = &surcharge
	}

	return q
}
