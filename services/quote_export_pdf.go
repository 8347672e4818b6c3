package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateQuotePDF renders the quote as an A4 portrait PDF using maroto/v2.
func GenerateQuotePDF(data QuoteExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuoteHeader(m, data)
	addQuoteTableHeader(m)
	for _, r := range data.Rows {
		addQuoteRow(m, r)
	}
	addQuoteSummary(m, data)
	addQuoteFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

var greyText = &props.Color{Red: 80, Green: 80, Blue: 80}

func addQuoteHeader(m core.Maroto, data QuoteExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New("Reference: "+data.ReferenceNumber, props.Text{
					Size:  9,
					Align: align.Left,
					Color: greyText,
				}),
			),
			col.New(6).Add(
				text.New("Date: "+data.CreatedDate, props.Text{
					Size:  9,
					Align: align.Right,
					Color: greyText,
				}),
			),
		),
	)

	if data.PreparedBy != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New("Prepared by: "+data.PreparedBy, props.Text{
						Size:  9,
						Align: align.Left,
						Color: greyText,
					}),
				),
			),
		)
	}

	m.AddRows(row.New(4))
}

func addQuoteTableHeader(m core.Maroto) {
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerTextLeft.Left = 2

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Item", headerTextLeft)).WithStyle(&headerCell),
			col.New(6).Add(text.New("Details", headerTextLeft)).WithStyle(&headerCell),
		),
	)
}

// addQuoteRow adds one ledger entry. The row height grows with the number of
// detail lines; discount markers get a shaded, italic row.
func addQuoteRow(m core.Maroto, r QuoteExportRow) {
	const lineHeight = 4.5

	textStyle := fontstyle.Normal
	var cellStyle *props.Cell
	if r.IsDiscount {
		textStyle = fontstyle.Italic
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	base := props.Text{Size: 8, Style: textStyle, Align: align.Center, Top: 1}
	left := base
	left.Align = align.Left
	left.Left = 2

	lines := len(r.Details)
	if lines < 1 {
		lines = 1
	}
	height := float64(lines)*lineHeight + 2

	colIndex := col.New(1).Add(text.New(r.Index, base))
	colItem := col.New(5).Add(text.New(r.Heading, left))
	colDetails := col.New(6)
	for i, d := range r.Details {
		detail := left
		detail.Top = 1 + float64(i)*lineHeight
		colDetails = colDetails.Add(text.New(d, detail))
	}

	if cellStyle != nil {
		colIndex = colIndex.WithStyle(cellStyle)
		colItem = colItem.WithStyle(cellStyle)
		colDetails = colDetails.WithStyle(cellStyle)
	}

	m.AddRows(row.New(height).Add(colIndex, colItem, colDetails))
}

func addQuoteSummary(m core.Maroto, data QuoteExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Right: 2}

	summaryLine := func(label, value string) {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(label, labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(value, valueStyle)).WithStyle(summaryCell),
			),
		)
	}

	if data.Discount != "" {
		summaryLine("Discount (per currency)", "-"+data.Discount)
	}
	if len(data.Totals) == 0 {
		summaryLine("Subtotal", NoItems)
		return
	}
	for _, t := range data.Totals {
		summaryLine("Subtotal "+t.Currency, t.Currency+" "+FormatAmount(t.Amount))
	}
}

func addQuoteFooter(m core.Maroto, data QuoteExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					"Generated on "+data.CreatedDate,
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
