package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnparsableAmount is returned when adding a quote whose price is N/A.
	ErrUnparsableAmount = errors.New("quote has no valid price")

	// ErrNegativeDiscount is returned for a discount below zero.
	ErrNegativeDiscount = errors.New("discount must not be negative")
)

// NoItems is displayed when the ledger holds no priced entries.
const NoItems = "No items"

const discountMarkerPrefix = "Discount:"

var (
	entryAmountRe  = regexp.MustCompile(`(?m)^(?:Price|Bundle): (-?[0-9][0-9,]*(?:\.[0-9]+)?) (\S+)`)
	entryBifocalRe = regexp.MustCompile(`(?m)^\+ Bifocal: (-?[0-9][0-9,]*(?:\.[0-9]+)?) (\S+)`)
)

// Lines renders a resolved quote the way it is shown and stored: a
// "Price:" or "Bundle:" line first, then part, contents, bundle components
// and the bifocal surcharge when present.
func (q *ResolvedQuote) Lines() []string {
	var lines []string
	if q.Bundle != nil {
		lines = append(lines,
			"Bundle: "+q.Amount.String()+" "+q.Currency,
			"Loupe: "+q.Bundle.Loupe.String()+" "+q.Currency,
			"Light: "+q.Bundle.Light.String()+" "+q.Currency,
			"Bundle Discount: "+q.Bundle.Discount.String()+" "+q.Currency,
		)
	} else {
		lines = append(lines, "Price: "+q.Amount.String()+" "+q.Currency)
	}
	if q.Part != "" {
		lines = append(lines, "Part Number: "+q.Part)
	}
	if q.Contents != "" {
		lines = append(lines, "Contents: "+q.Contents)
	}
	if q.Bifocal != nil {
		lines = append(lines, "+ Bifocal: "+FormatAmount(*q.Bifocal)+" "+q.Currency)
	}
	return lines
}

// EntryAmount is what subtotal recomputation reads back from one entry.
type EntryAmount struct {
	Amount    decimal.Decimal
	Currency  string
	Surcharge decimal.Decimal
}

// Total is the entry's contribution to its currency subtotal.
func (a EntryAmount) Total() decimal.Decimal {
	return a.Amount.Add(a.Surcharge)
}

// IsDiscountMarker reports whether an entry only records a discount.
func IsDiscountMarker(entry string) bool {
	return strings.HasPrefix(entry, discountMarkerPrefix)
}

// ParseEntry extracts the leading amount and currency of a ledger entry,
// plus any bifocal surcharge. ok is false for discount markers and for text
// without a "Price:" or "Bundle:" line.
func ParseEntry(entry string) (EntryAmount, bool) {
	if IsDiscountMarker(entry) {
		return EntryAmount{}, false
	}
	m := entryAmountRe.FindStringSubmatch(entry)
	if m == nil {
		return EntryAmount{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return EntryAmount{}, false
	}

	out := EntryAmount{Amount: amount, Currency: m[2]}
	if b := entryBifocalRe.FindStringSubmatch(entry); b != nil && b[2] == out.Currency {
		if s, err := decimal.NewFromString(strings.ReplaceAll(b[1], ",", "")); err == nil {
			out.Surcharge = s
		}
	}
	return out, true
}

// CurrencyTotal is one line of the running subtotal.
type CurrencyTotal struct {
	Currency string
	Amount   decimal.Decimal
}

// Ledger accumulates accepted quotes as immutable text entries plus one
// global discount. Subtotals are never stored; they are re-derived from the
// entry text on every read.
type Ledger struct {
	entries  []string
	discount decimal.Decimal
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// RestoreLedger rebuilds a ledger from persisted entries and discount.
func RestoreLedger(entries []string, discount decimal.Decimal) *Ledger {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return &Ledger{
		entries:  append([]string(nil), entries...),
		discount: discount,
	}
}

// Add serializes q and appends it. Quotes whose price is N/A are refused.
func (l *Ledger) Add(q *ResolvedQuote) (string, error) {
	if q == nil || !q.Amount.Valid || q.Currency == "" {
		return "", ErrUnparsableAmount
	}
	entry := strings.Join(q.Lines(), "\n")
	l.entries = append(l.entries, entry)
	return entry, nil
}

// ApplyDiscount replaces the discount and appends a display-only marker.
func (l *Ledger) ApplyDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeDiscount
	}
	l.discount = amount
	l.entries = append(l.entries, discountMarkerPrefix+" -"+FormatAmount(amount))
	return nil
}

// Reset clears all entries and the discount.
func (l *Ledger) Reset() {
	l.entries = nil
	l.discount = decimal.Zero
}

// Entries returns a copy of the entries in insertion order.
func (l *Ledger) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Discount returns the current global discount.
func (l *Ledger) Discount() decimal.Decimal {
	return l.discount
}

// Subtotals sums every priced entry per currency, then subtracts the full
// discount from each currency bucket independently, clamping each at zero.
// Currencies are ordered by first appearance.
func (l *Ledger) Subtotals() []CurrencyTotal {
	var totals []CurrencyTotal
	index := make(map[string]int)

	for _, entry := range l.entries {
		a, ok := ParseEntry(entry)
		if !ok {
			continue
		}
		i, seen := index[a.Currency]
		if !seen {
			i = len(totals)
			index[a.Currency] = i
			totals = append(totals, CurrencyTotal{Currency: a.Currency})
		}
		totals[i].Amount = totals[i].Amount.Add(a.Total())
	}

	for i := range totals {
		amt := totals[i].Amount.Sub(l.discount)
		if amt.IsNegative() {
			amt = decimal.Zero
		}
		totals[i].Amount = amt
	}
	return totals
}

// Display renders one "<CURRENCY> <amount>" line per currency, or NoItems.
func (l *Ledger) Display() string {
	totals := l.Subtotals()
	if len(totals) == 0 {
		return NoItems
	}
	lines := make([]string, len(totals))
	for i, t := range totals {
		lines[i] = t.Currency + " " + FormatAmount(t.Amount)
	}
	return strings.Join(lines, "\n")
}
