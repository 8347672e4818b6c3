// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"pricequote/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// TestPassword is the password CreateTestUser assigns.
const TestPassword = "Secure2025!"

// CreateTestUser creates a verified login user with TestPassword and returns it.
func CreateTestUser(t *testing.T, app *pocketbase.PocketBase, email string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collections.UsersCollection)
	if err != nil {
		t.Fatalf("failed to find users collection: %v", err)
	}

	record := core.NewRecord(col)
	record.SetEmail(email)
	record.SetPassword(TestPassword)
	record.SetVerified(true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}

	return record
}

// CatalogSheets returns a small pricing workbook laid out the way the real
// one is: sheet name per product mode, no header names, fixed offsets. The
// Europe header and the Straps row carry stray spaces, as hand-edited sheets do.
func CatalogSheets() map[string][][]string {
	return map[string][][]string{
		"Accessories": {
			{"Accessories Price List"},
			{},
			{"", "", "", "", "USA", " Europe "},
			{"Category", "Sub-Category", "Part Number", "Description", "USD", "EUR", "Contents"},
			{"Mirrors", "Handheld", "ACC-100", "Standard", "45", "41.5", "Mirror, pouch"},
			{"Mirrors", "Handheld", "ACC-101", "Deluxe", "60", "55"},
			{"Mirrors", "Wall", "ACC-110", "Standard", "1250", "1100", "Mirror, bracket"},
			{"Cases", "Hard", "ACC-200", "Large", "TBD", "30"},
			{" Straps ", "Neck ", " ACC-300", "Lanyard ", " 15 ", "14", " Lanyard, clip "},
		},
		"Loupes Only": {
			{"Loupes Only"},
			{"", "", "USA", "", "", "Europe"},
			{"Telescope", "Frame", "USD", "Part", "Bifocal", "EUR", "Part"},
			{"2.5x Galilean", "Ergo", "1495", "LP-250-E-US", "250", "1395", "LP-250-E-EU"},
			{"2.5x Galilean", "Sport", "1395", "LP-250-S-US", "", "1295", "LP-250-S-EU"},
			{"3.5x Prismatic", "Ergo", "2495", "LP-350-E-US", "300", "2295", "LP-350-E-EU"},
		},
		"Light Systems": {
			{"Light Systems"},
			{},
			{"", "", "", "USA", "Europe"},
			{"System", "Part Number", "Description", "USD", "EUR"},
			{"Spark", "LT-100", "Cordless", "895", "825"},
			{"Spark", "LT-101", "Corded", "795", "735"},
			{"Eclipse", "LT-200", "Cordless", "1295", "1195"},
		},
		"Omni Optic": {
			{"Omni Optic"},
			{},
			{"", "", "USA", "Europe"},
			{"Product", "Description", "USD", "EUR"},
			{"Omni Optic", "Headband", "2995", "2750"},
			{"Omni Optic", "Frame Mount", "3195", "2950"},
		},
		"School Bundles": {
			{"School Bundles"},
			{"", "", "", "USA", "", "", "", "Europe"},
			{"Loupe", "", "Light", "USD", "USD", "USD", "USD", "EUR", "EUR", "EUR", "EUR"},
			{"2.5x Galilean", "", "Spark", "1495", "895", "-390", "2000", "1395", "825", "-370", "1850"},
			{"3.5x Prismatic", "", "Spark", "2495", "895", "-490", "2900", "2295", "825", "-420", "2700"},
		},
	}
}

// CatalogWorkbook writes CatalogSheets to an xlsx file and returns its bytes.
// Numeric cells are stored as numbers, everything else as text.
func CatalogWorkbook(t *testing.T) []byte {
	t.Helper()
	return BuildWorkbook(t, CatalogSheets())
}

// BuildWorkbook writes the given sheets to an xlsx file and returns its bytes.
func BuildWorkbook(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				t.Fatalf("rename sheet %q: %v", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("create sheet %q: %v", name, err)
		}

		for r, row := range rows {
			cells := make([]any, len(row))
			for c, v := range row {
				if v == "" {
					continue
				}
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					cells[c] = n
				} else {
					cells[c] = v
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				t.Fatalf("write row %d of %q: %v", r+1, name, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
