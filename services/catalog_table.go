package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLayout is returned when a sheet does not match its mode's fixed layout.
	ErrLayout = errors.New("catalog layout mismatch")

	// ErrCatalogLoad is returned for a mode whose sheet could not be loaded.
	ErrCatalogLoad = errors.New("catalog not loaded")
)

// Table is one catalog sheet held as a positional grid. Rows may be ragged;
// cells past the end of a row read as empty. Cells are stored trimmed so
// selections compare against the text the dropdowns show.
type Table struct {
	Mode   Mode
	Layout Layout
	Rows   [][]string
	Width  int
}

// NewTable wraps a grid for the given mode and validates it against the
// mode's layout, so a reshuffled sheet fails at load time instead of
// resolving against the wrong column.
func NewTable(mode Mode, rows [][]string) (*Table, error) {
	layout, ok := Layouts[mode]
	if !ok {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrLayout, mode)
	}

	t := &Table{Mode: mode, Layout: layout, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = strings.TrimSpace(v)
		}
		t.Rows[i] = row
		if len(r) > t.Width {
			t.Width = len(r)
		}
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Cell returns the value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (t *Table) validate() error {
	l := t.Layout
	if l.MarketRow >= len(t.Rows) {
		return fmt.Errorf("%w: %s: market header row %d missing", ErrLayout, t.Mode, l.MarketRow+1)
	}

	markets := t.Markets()
	if len(markets) == 0 {
		return fmt.Errorf("%w: %s: market header row %d is empty", ErrLayout, t.Mode, l.MarketRow+1)
	}
	for _, m := range markets {
		col := t.MarketColumn(m)
		cur := strings.TrimSpace(t.Cell(l.CurrencyRow, col))
		if cur == "" {
			return fmt.Errorf("%w: %s: no currency for market %q in row %d", ErrLayout, t.Mode, m, l.CurrencyRow+1)
		}
		if strings.ContainsAny(cur, " \t\n") {
			return fmt.Errorf("%w: %s: currency %q for market %q is not a single code", ErrLayout, t.Mode, cur, m)
		}
	}

	for _, row := range t.dataRows() {
		if !isBlank(cellOf(row, l.Levels[0].Col)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: no data rows from row %d", ErrLayout, t.Mode, l.DataRowFrom+1)
}

func cellOf(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func (t *Table) marketBounds() (from, to int) {
	header := t.Rows[t.Layout.MarketRow]
	from, to = t.Layout.MarketColFrom, len(header)
	if t.Layout.MarketColTo > 0 && t.Layout.MarketColTo < to {
		to = t.Layout.MarketColTo
	}
	return from, to
}

func (t *Table) dataRows() [][]string {
	from, to := t.Layout.DataRowFrom, len(t.Rows)
	if t.Layout.DataRowTo > 0 && t.Layout.DataRowTo < to {
		to = t.Layout.DataRowTo
	}
	if from >= to {
		return nil
	}
	return t.Rows[from:to]
}

// Markets returns the distinct non-empty market names of the header row in
// first-occurrence order.
func (t *Table) Markets() []string {
	if t.Layout.MarketRow >= len(t.Rows) {
		return nil
	}
	header := t.Rows[t.Layout.MarketRow]
	from, to := t.marketBounds()

	var out []string
	seen := make(map[string]bool)
	for col := from; col < to; col++ {
		v := header[col]
		if isBlank(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// MarketColumn returns the first header column whose value equals market,
// or noColumn.
func (t *Table) MarketColumn(market string) int {
	if market == "" || t.Layout.MarketRow >= len(t.Rows) {
		return noColumn
	}
	from, to := t.marketBounds()
	header := t.Rows[t.Layout.MarketRow]
	for col := from; col < to; col++ {
		if header[col] == market {
			return col
		}
	}
	return noColumn
}

// matches reports whether row carries the fixed values for the first
// len(fixed) selector levels.
func (t *Table) matches(row []string, fixed []string) bool {
	for i, v := range fixed {
		if cellOf(row, t.Layout.Levels[i].Col) != v {
			return false
		}
	}
	return true
}

// Candidates returns the valid choices for selector level, restricted to
// rows matching every earlier fixed level. It returns nil when an earlier
// level is unset: downstream selectors then only offer the placeholder.
func (t *Table) Candidates(levels []string, level int) []string {
	if level < 0 || level >= len(t.Layout.Levels) {
		return nil
	}
	if len(levels) < level {
		return nil
	}
	fixed := levels[:level]
	for _, v := range fixed {
		if v == "" {
			return nil
		}
	}

	col := t.Layout.Levels[level].Col
	var out []string
	seen := make(map[string]bool)
	for _, row := range t.dataRows() {
		if !t.matches(row, fixed) {
			continue
		}
		v := cellOf(row, col)
		if isBlank(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// lookupRow returns the first data row whose selector columns equal levels.
func (t *Table) lookupRow(levels []string) ([]string, bool) {
	if len(levels) != len(t.Layout.Levels) {
		return nil, false
	}
	for _, row := range t.dataRows() {
		if t.matches(row, levels) {
			return row, true
		}
	}
	return nil, false
}
