package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GenerateQuoteExcel writes the quote to an xlsx workbook and returns its bytes.
// Layout: title, reference, date, optional customer line, then one row per
// ledger entry (#, item, details) and the per-currency subtotals.
func GenerateQuoteExcel(data QuoteExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Quote"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 44, 60}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	discountStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Italic: true, Size: 10, Color: "#666666"},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create discount style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows ─────────────────────────────────────────────────────

	header := []string{
		data.Title,
		"Ref: " + data.ReferenceNumber,
		"Date: " + data.CreatedDate,
	}
	if data.PreparedBy != "" {
		header = append(header, "Prepared by: "+data.PreparedBy)
	}
	for i, text := range header {
		rowStr := fmt.Sprintf("%d", i+1)
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge header row %d: %w", i+1, err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(text))
		style := subtitleStyle
		if i == 0 {
			style = titleStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)
	}

	// ── Column Headers ──────────────────────────────────────────────────

	row := len(header) + 2
	rowStr := fmt.Sprintf("%d", row)
	for i, h := range []string{"#", "Item", "Details"} {
		f.SetCellValue(sheetName, columns[i]+rowStr, h)
	}
	f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, headerStyle)
	row++

	// ── Entries ─────────────────────────────────────────────────────────

	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(r.Heading))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(strings.Join(r.Details, "\n")))

		style := itemStyle
		if r.IsDiscount {
			style = discountStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	if data.Discount != "" {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "B"+rowStr, "Discount:")
		f.SetCellStyle(sheetName, "B"+rowStr, "B"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "C"+rowStr, "-"+data.Discount)
		f.SetCellStyle(sheetName, "C"+rowStr, "C"+rowStr, summaryValueStyle)
		row++
	}

	if len(data.Totals) == 0 {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "B"+rowStr, "Subtotal:")
		f.SetCellStyle(sheetName, "B"+rowStr, "B"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "C"+rowStr, NoItems)
		f.SetCellStyle(sheetName, "C"+rowStr, "C"+rowStr, summaryValueStyle)
	}
	for _, t := range data.Totals {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "B"+rowStr, fmt.Sprintf("Subtotal (%s):", t.Currency))
		f.SetCellStyle(sheetName, "B"+rowStr, "B"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "C"+rowStr, t.Currency+" "+FormatAmount(t.Amount))
		f.SetCellStyle(sheetName, "C"+rowStr, "C"+rowStr, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
