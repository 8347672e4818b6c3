package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"pricequote/services"
	"pricequote/testhelpers"
)

func TestHandleQuotePage_FullPageAndPartial(t *testing.T) {
	app, env, user := newTestEnv(t)
	handler := HandleQuotePage(app, env)

	req := httptest.NewRequest(http.MethodGet, "/quote?mode=Accessories", nil)
	rec := httptest.NewRecorder()
	if err := handler(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"<!doctype html>",
		"rep@orascoptic.com",
		`<option value="">Select Market</option>`,
		`<option value="USA">USA</option>`,
		`<option value="">Select Category</option>`,
		`<div id="subtotal" class="subtotal">No items</div>`,
		"Add to List</button>",
	)
	if !strings.Contains(body, " disabled>Add to List") {
		t.Error("Add to List should be disabled without a complete selection")
	}

	req = httptest.NewRequest(http.MethodGet, "/quote?mode=Accessories", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := handler(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body = rec.Body.String()
	if strings.Contains(body, "<!doctype html>") {
		t.Error("htmx request should get the partial only")
	}
	testhelpers.AssertHTMLContains(t, body, `<div id="quote-content" class="columns">`)
}

func TestHandleQuotePage_ResolvedSelection(t *testing.T) {
	app, env, user := newTestEnv(t)

	q := accessoriesForm("USA", "Mirrors", "Handheld", "Standard")
	req := httptest.NewRequest(http.MethodGet, "/quote?"+q.Encode(), nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`<p class="price">Price: 45.00 USD</p>`,
		"Part Number: ACC-100",
		"Contents: Mirror, pouch",
		`<option value="Standard" selected>Standard</option>`,
	)
	if strings.Contains(body, " disabled>Add to List") {
		t.Error("Add to List should be enabled for a priced selection")
	}
}

func TestHandleQuotePage_StaleChoiceFallsBack(t *testing.T) {
	app, env, user := newTestEnv(t)

	// "Handheld" is not a Cases sub-category, so it and everything below reset.
	q := accessoriesForm("USA", "Cases", "Handheld", "Standard")
	req := httptest.NewRequest(http.MethodGet, "/quote?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		`<option value="Cases" selected>Cases</option>`,
		`<option value="Hard">Hard</option>`,
	)
	if strings.Contains(body, "Handheld") {
		t.Error("stale sub-category should not be offered under Cases")
	}
	if strings.Contains(body, `class="price"`) {
		t.Error("no quote should be shown for an incomplete selection")
	}
}

func TestHandleQuotePage_BifocalOnlyForLoupes(t *testing.T) {
	app, env, user := newTestEnv(t)

	tests := []struct {
		query       string
		wantBifocal bool
	}{
		{"mode=Loupes+Only", true},
		{"mode=Accessories", false},
		{"mode=School+Bundles", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/quote?"+tt.query, nil)
		rec := httptest.NewRecorder()
		if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
			t.Fatalf("%s: handler returned error: %v", tt.query, err)
		}
		got := strings.Contains(rec.Body.String(), `name="bifocal"`)
		if got != tt.wantBifocal {
			t.Errorf("%s: bifocal checkbox shown = %v, want %v", tt.query, got, tt.wantBifocal)
		}
	}
}

func TestHandleQuotePage_NoPriceNotice(t *testing.T) {
	app, env, user := newTestEnv(t)

	q := accessoriesForm("USA", "Cases", "Hard", "Large")
	req := httptest.NewRequest(http.MethodGet, "/quote?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body,
		"Price: N/A USD",
		"No price is listed for this selection",
		" disabled>Add to List",
	)
}

func TestHandleQuotePage_BrokenSheet(t *testing.T) {
	app, env, user := newTestEnv(t)
	sheets := testhelpers.CatalogSheets()
	delete(sheets, "Omni Optic")
	env.Catalog = services.LoadCatalog(bytes.NewReader(testhelpers.BuildWorkbook(t, sheets)))

	req := httptest.NewRequest(http.MethodGet, "/quote?mode=Omni+Optic", nil)
	rec := httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "The Omni Optic price sheet is unavailable")

	// Other modes keep working.
	req = httptest.NewRequest(http.MethodGet, "/quote?mode=Light+Systems", nil)
	rec = httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	body := rec.Body.String()
	if strings.Contains(body, "unavailable") {
		t.Error("Light Systems should not be affected by a missing Omni Optic sheet")
	}
	testhelpers.AssertHTMLContains(t, body, `<option value="Spark">Spark</option>`)
}

func TestHandleQuote_PaddedCatalogRoundTrip(t *testing.T) {
	app, env, user := newTestEnv(t)

	// The options offered are trimmed, and posting them back selects them.
	q := accessoriesForm("Europe", "Straps", "", "")
	req := httptest.NewRequest(http.MethodGet, "/quote?"+q.Encode(), nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuotePage(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`<option value="Europe" selected>Europe</option>`,
		`<option value="Straps" selected>Straps</option>`,
		`<option value="Neck">Neck</option>`,
	)

	req = formRequest(http.MethodPost, "/quote/items", accessoriesForm("Europe", "Straps", "Neck", "Lanyard"))
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	if err := HandleQuoteAdd(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`<div id="subtotal" class="subtotal">EUR 14.00</div>`,
		"<pre>Price: 14.00 EUR\nPart Number: ACC-300\nContents: Lanyard, clip</pre>",
	)
}

func TestHandleQuoteAdd(t *testing.T) {
	app, env, user := newTestEnv(t)
	handler := HandleQuoteAdd(app, env)

	req := formRequest(http.MethodPost, "/quote/items", accessoriesForm("USA", "Mirrors", "Handheld", "Standard"))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := handler(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "Added to list") {
		t.Errorf("expected success toast, got %q", rec.Header().Get("HX-Trigger"))
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`<div id="subtotal" class="subtotal">USD 45.00</div>`,
		"<pre>Price: 45.00 USD\nPart Number: ACC-100\nContents: Mirror, pouch</pre>",
	)

	ledger, _, err := services.LoadLedger(app, user.Id)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if n := len(ledger.Entries()); n != 1 {
		t.Errorf("expected 1 stored entry, got %d", n)
	}
}

func TestHandleQuoteAdd_ConcurrentRequestsKeepEveryEntry(t *testing.T) {
	app, env, user := newTestEnv(t)
	handler := HandleQuoteAdd(app, env)

	const n = 6
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := formRequest(http.MethodPost, "/quote/items", accessoriesForm("USA", "Mirrors", "Handheld", "Standard"))
			rec := httptest.NewRecorder()
			if err := handler(newAuthedEvent(app, user, req, rec)); err != nil {
				t.Errorf("handler returned error: %v", err)
			}
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusOK {
			t.Errorf("expected status 200, got %d", code)
		}
	}

	ledger, _, err := services.LoadLedger(app, user.Id)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got := len(ledger.Entries()); got != n {
		t.Errorf("expected %d stored entries, got %d", n, got)
	}
}

func TestHandleQuoteAdd_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		wantText string
	}{
		{"incomplete", accessoriesForm("USA", "Mirrors", "Handheld", ""), "Complete every selection"},
		{"no market", accessoriesForm("", "Mirrors", "Handheld", "Standard"), "Complete every selection"},
		{"unknown market", accessoriesForm("Japan", "Mirrors", "Handheld", "Standard"), "Complete every selection"},
		{"stale path", accessoriesForm("USA", "Cases", "Handheld", "Standard"), "Complete every selection"},
		{"no price", accessoriesForm("USA", "Cases", "Hard", "Large"), "No price is listed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, env, user := newTestEnv(t)

			req := formRequest(http.MethodPost, "/quote/items", tt.form)
			req.Header.Set("HX-Request", "true")
			rec := httptest.NewRecorder()
			if err := HandleQuoteAdd(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected status 422, got %d", rec.Code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none on rejection")
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.wantText)

			ledger, _, err := services.LoadLedger(app, user.Id)
			if err != nil {
				t.Fatalf("LoadLedger: %v", err)
			}
			if n := len(ledger.Entries()); n != 0 {
				t.Errorf("expected nothing stored, got %d entries", n)
			}
		})
	}
}

func TestHandleQuoteAdd_LoupeWithBifocal(t *testing.T) {
	app, env, user := newTestEnv(t)

	form := url.Values{
		"mode":    {"Loupes Only"},
		"market":  {"USA"},
		"level0":  {"2.5x Galilean"},
		"level1":  {"Ergo"},
		"bifocal": {"on"},
	}
	req := formRequest(http.MethodPost, "/quote/items", form)
	rec := httptest.NewRecorder()
	if err := HandleQuoteAdd(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"+ Bifocal: 250.00 USD",
		`<div id="subtotal" class="subtotal">USD 1,745.00</div>`,
	)
}

func addItem(t *testing.T, handler func(*httptest.ResponseRecorder, *http.Request), form url.Values) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler(rec, formRequest(http.MethodPost, "/quote/items", form))
	if rec.Code != http.StatusOK {
		t.Fatalf("add %v: status %d: %s", form, rec.Code, rec.Body.String())
	}
}

func TestHandleQuoteDiscount(t *testing.T) {
	app, env, user := newTestEnv(t)
	add := func(rec *httptest.ResponseRecorder, req *http.Request) {
		if err := HandleQuoteAdd(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	addItem(t, add, accessoriesForm("USA", "Mirrors", "Handheld", "Standard"))
	addItem(t, add, accessoriesForm("USA", "Mirrors", "Handheld", "Deluxe"))

	tests := []struct {
		name       string
		discount   string
		wantStatus int
		wantText   string
	}{
		{"applies", "10", http.StatusOK, `<div id="subtotal" class="subtotal">USD 95.00</div>`},
		{"replaces previous", "25", http.StatusOK, `<div id="subtotal" class="subtotal">USD 80.00</div>`},
		{"clamps at zero", "500", http.StatusOK, `<div id="subtotal" class="subtotal">USD 0.00</div>`},
		{"empty means zero", "", http.StatusOK, `<div id="subtotal" class="subtotal">USD 105.00</div>`},
		{"negative", "-5", http.StatusBadRequest, "Discount cannot be negative"},
		{"not a number", "ten", http.StatusBadRequest, "Discount must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := accessoriesForm("USA", "Mirrors", "Handheld", "Standard")
			form.Set("discount", tt.discount)
			req := formRequest(http.MethodPost, "/quote/discount", form)
			req.Header.Set("HX-Request", "true")
			rec := httptest.NewRecorder()
			if err := HandleQuoteDiscount(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.wantText)
		})
	}

	// A rejected discount leaves the stored one alone.
	ledger, _, err := services.LoadLedger(app, user.Id)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if got := ledger.Display(); got != "USD 105.00" {
		t.Errorf("Display() = %q, want %q", got, "USD 105.00")
	}
}

func TestHandleQuoteReset(t *testing.T) {
	app, env, user := newTestEnv(t)
	add := func(rec *httptest.ResponseRecorder, req *http.Request) {
		if err := HandleQuoteAdd(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	addItem(t, add, accessoriesForm("Europe", "Mirrors", "Wall", "Standard"))

	req := formRequest(http.MethodPost, "/quote/reset", url.Values{"mode": {"Accessories"}})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := HandleQuoteReset(app, env)(newAuthedEvent(app, user, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if !strings.Contains(rec.Header().Get("HX-Trigger"), "List cleared") {
		t.Errorf("expected reset toast, got %q", rec.Header().Get("HX-Trigger"))
	}
	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, `<div id="subtotal" class="subtotal">No items</div>`)
	if strings.Contains(body, "<pre>") {
		t.Error("entries should be cleared")
	}
}

func TestParseSelection(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/quote?mode=Nope&market=+USA+&level0=Mirrors&level1=Handheld&level2=Standard&level9=x&bifocal=on", nil)
	sel := parseSelection(req)

	if sel.Mode != services.ModeAccessories {
		t.Errorf("unknown mode should fall back to %q, got %q", services.ModeAccessories, sel.Mode)
	}
	if sel.Path.Market != "USA" {
		t.Errorf("market = %q, want trimmed USA", sel.Path.Market)
	}
	want := []string{"Mirrors", "Handheld", "Standard"}
	if len(sel.Path.Levels) != len(want) {
		t.Fatalf("levels = %v, want %v", sel.Path.Levels, want)
	}
	for i := range want {
		if sel.Path.Levels[i] != want[i] {
			t.Errorf("level %d = %q, want %q", i, sel.Path.Levels[i], want[i])
		}
	}
	if !sel.Bifocal {
		t.Error("bifocal=on should set Bifocal")
	}
}
