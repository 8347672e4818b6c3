package services

import (
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"
)

// Catalog holds one validated table per mode. A mode whose sheet failed to
// load keeps its error; the other modes stay usable.
type Catalog struct {
	tables map[Mode]*Table
	errs   map[Mode]error
}

// Table returns the table for a mode, or the reason it is unavailable.
func (c *Catalog) Table(mode Mode) (*Table, error) {
	if err, ok := c.errs[mode]; ok {
		return nil, err
	}
	t, ok := c.tables[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCatalogLoad, mode)
	}
	return t, nil
}

// Err returns the load error for a mode, or nil.
func (c *Catalog) Err(mode Mode) error {
	_, err := c.Table(mode)
	return err
}

// NewCatalog builds a catalog from already-read grids keyed by mode.
// Missing or invalid grids are recorded as per-mode errors.
func NewCatalog(sheets map[Mode][][]string) *Catalog {
	c := &Catalog{
		tables: make(map[Mode]*Table),
		errs:   make(map[Mode]error),
	}
	for _, mode := range ModeOptions {
		rows, ok := sheets[mode]
		if !ok {
			c.errs[mode] = fmt.Errorf("%w: %s: sheet missing", ErrCatalogLoad, mode)
			continue
		}
		t, err := NewTable(mode, rows)
		if err != nil {
			c.errs[mode] = fmt.Errorf("%w: %w", ErrCatalogLoad, err)
			continue
		}
		c.tables[mode] = t
	}
	return c
}

// failedCatalog marks every mode unavailable with the same cause.
func failedCatalog(err error) *Catalog {
	c := &Catalog{
		tables: make(map[Mode]*Table),
		errs:   make(map[Mode]error),
	}
	for _, mode := range ModeOptions {
		c.errs[mode] = fmt.Errorf("%w: %s: %w", ErrCatalogLoad, mode, err)
	}
	return c
}

// LoadCatalogFile opens the pricing workbook at path. The returned catalog
// is never nil; failures are recorded per mode.
func LoadCatalogFile(path string) *Catalog {
	f, err := excelize.OpenFile(path)
	if err != nil {
		log.Printf("catalog: could not open %s: %v", path, err)
		return failedCatalog(err)
	}
	defer f.Close()
	return readCatalog(f)
}

// LoadCatalog reads the pricing workbook from r.
func LoadCatalog(r io.Reader) *Catalog {
	f, err := excelize.OpenReader(r)
	if err != nil {
		log.Printf("catalog: could not open workbook: %v", err)
		return failedCatalog(err)
	}
	defer f.Close()
	return readCatalog(f)
}

// readCatalog reads each mode's sheet by name. Cells are read raw so prices
// keep their stored numeric value rather than the display format.
func readCatalog(f *excelize.File) *Catalog {
	sheets := make(map[Mode][][]string)
	for _, mode := range ModeOptions {
		rows, err := f.GetRows(string(mode), excelize.Options{RawCellValue: true})
		if err != nil {
			log.Printf("catalog: sheet %q: %v", mode, err)
			continue
		}
		sheets[mode] = rows
	}

	c := NewCatalog(sheets)
	for _, mode := range ModeOptions {
		if err := c.Err(mode); err != nil {
			log.Printf("catalog: %s unavailable: %v", mode, err)
		} else {
			t, _ := c.Table(mode)
			log.Printf("catalog: %s loaded (%d markets, %d rows)", mode, len(t.Markets()), len(t.dataRows()))
		}
	}
	return c
}
