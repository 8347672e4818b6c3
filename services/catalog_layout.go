// Package services holds the catalog resolver, the quote ledger and the
// export builders used by the handlers.
package services

// Mode identifies one product catalog sheet.
type Mode string

const (
	ModeAccessories   Mode = "Accessories"
	ModeLoupes        Mode = "Loupes Only"
	ModeLights        Mode = "Light Systems"
	ModeOmniOptic     Mode = "Omni Optic"
	ModeSchoolBundles Mode = "School Bundles"
)

// noColumn marks a layout column that the mode does not have.
const noColumn = -1

// Level is one cascading selector: its label and the sheet column it reads.
type Level struct {
	Label string
	Col   int
}

// Layout holds the fixed positional offsets of one catalog sheet. All rows
// and columns are 0-indexed. Nothing here is derived from the sheet contents.
type Layout struct {
	MarketRow     int
	MarketColFrom int
	MarketColTo   int // exclusive, 0 = end of row
	CurrencyRow   int
	DataRowFrom   int
	DataRowTo     int // exclusive, 0 = end of sheet
	Levels        []Level

	PartCol      int // fixed part number column, or noColumn
	PartOffset   int // part number relative to the price column, 0 = none
	ContentsLast bool

	BifocalOffset int  // bifocal surcharge relative to the price column, 0 = none
	Bundle        bool // price column holds loupe, light, discount, bundle
}

// Layouts is the per-mode positional contract of the pricing workbook.
var Layouts = map[Mode]Layout{
	ModeAccessories: {
		MarketRow:     2,
		MarketColFrom: 4,
		CurrencyRow:   3,
		DataRowFrom:   4,
		Levels: []Level{
			{Label: "Category", Col: 0},
			{Label: "Sub-Category", Col: 1},
			{Label: "Description", Col: 3},
		},
		PartCol:      2,
		ContentsLast: true,
	},
	ModeLoupes: {
		MarketRow:     1,
		MarketColFrom: 2,
		CurrencyRow:   2,
		DataRowFrom:   3,
		DataRowTo:     33,
		Levels: []Level{
			{Label: "Telescope", Col: 0},
			{Label: "Frame", Col: 1},
		},
		PartCol:       noColumn,
		PartOffset:    1,
		BifocalOffset: 2,
	},
	ModeLights: {
		MarketRow:     2,
		MarketColFrom: 3,
		CurrencyRow:   3,
		DataRowFrom:   4,
		Levels: []Level{
			{Label: "System", Col: 0},
			{Label: "Description", Col: 2},
		},
		PartCol: 1,
	},
	ModeOmniOptic: {
		MarketRow:     2,
		MarketColFrom: 2,
		MarketColTo:   13,
		CurrencyRow:   3,
		DataRowFrom:   4,
		Levels: []Level{
			{Label: "Product", Col: 0},
			{Label: "Description", Col: 1},
		},
		PartCol: noColumn,
	},
	ModeSchoolBundles: {
		MarketRow:     1,
		MarketColFrom: 3,
		MarketColTo:   19,
		CurrencyRow:   2,
		DataRowFrom:   3,
		Levels: []Level{
			{Label: "Loupe", Col: 0},
			{Label: "Light", Col: 2},
		},
		PartCol: noColumn,
		Bundle:  true,
	},
}
