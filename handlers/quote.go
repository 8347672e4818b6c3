package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"pricequote/config"
	"pricequote/services"
	"pricequote/templates"
)

// Env carries what the quote handlers share: configuration and the loaded
// catalog.
type Env struct {
	Config  *config.Config
	Catalog *services.Catalog
}

// selection is the quote form state submitted with every request.
type selection struct {
	Mode    services.Mode
	Path    services.SelectionPath
	Bifocal bool
}

// parseSelection reads mode, market, level0..N and bifocal from the query
// string or the posted form. An unknown mode falls back to the first one.
func parseSelection(r *http.Request) selection {
	mode, ok := services.ParseMode(r.FormValue("mode"))
	if !ok {
		mode = services.ModeOptions[0]
	}
	levels := make([]string, len(services.Layouts[mode].Levels))
	for i := range levels {
		levels[i] = strings.TrimSpace(r.FormValue("level" + strconv.Itoa(i)))
	}
	return selection{
		Mode: mode,
		Path: services.SelectionPath{
			Market: strings.TrimSpace(r.FormValue("market")),
			Levels: levels,
		},
		Bifocal: r.FormValue("bifocal") == "on",
	}
}

func (env *Env) resolveOptions(sel selection) services.ResolveOptions {
	return services.ResolveOptions{
		Bifocal:         sel.Bifocal,
		BifocalFallback: env.Config.Bifocal(),
	}
}

func selectData(name, label string, values []string, chosen string) templates.SelectData {
	opts := []templates.Option{{Value: "", Label: label}}
	for _, v := range values {
		opts = append(opts, templates.Option{Value: v, Label: v, Selected: v == chosen})
	}
	return templates.SelectData{Name: name, Label: strings.TrimPrefix(label, "Select "), Options: opts}
}

// buildQuoteData assembles the quote screen for a selection and a ledger.
// Stale choices are dropped, so downstream dropdowns fall back to their
// placeholder.
func (env *Env) buildQuoteData(sel selection, ledger *services.Ledger, userEmail string) templates.QuoteData {
	data := templates.QuoteData{
		Title:     env.Config.Quote.Title,
		UserEmail: userEmail,
		Mode:      string(sel.Mode),
		Entries:   ledger.Entries(),
		Subtotal:  ledger.Display(),
	}
	if d := ledger.Discount(); d.IsPositive() {
		data.Discount = d.String()
	}
	for _, m := range services.ModeOptions {
		data.Modes = append(data.Modes, templates.Option{Value: string(m), Label: string(m), Selected: m == sel.Mode})
	}

	table, err := env.Catalog.Table(sel.Mode)
	if err != nil {
		data.CatalogError = fmt.Sprintf("The %s price sheet is unavailable: %v", sel.Mode, err)
		return data
	}

	path := services.NormalizePath(table, sel.Path)
	data.Selects = append(data.Selects,
		selectData("market", services.MarketPlaceholder, table.Markets(), path.Market))
	for i, level := range table.Layout.Levels {
		data.Selects = append(data.Selects, selectData(
			"level"+strconv.Itoa(i),
			services.Placeholder(level.Label),
			table.Candidates(path.Levels, i),
			path.Levels[i],
		))
	}
	data.ShowBifocal = table.Layout.BifocalOffset != 0
	data.Bifocal = data.ShowBifocal && sel.Bifocal

	q, err := services.Resolve(table, path, env.resolveOptions(sel))
	switch {
	case err == nil:
		data.QuoteLines = q.Lines()
		data.CanAdd = q.Amount.Valid
		if !q.Amount.Valid {
			data.Notice = "No price is listed for this selection, so it cannot be added."
		}
	case errors.Is(err, services.ErrNoMatchingRow):
		data.Notice = "No catalog row matches this selection."
	}
	return data
}

func renderQuote(e *core.RequestEvent, data templates.QuoteData) error {
	var component templ.Component
	if e.Request.Header.Get("HX-Request") == "true" {
		component = templates.QuoteContent(data)
	} else {
		component = templates.QuotePage(data)
	}
	return component.Render(e.Request.Context(), e.Response)
}

// HandleQuotePage renders the quote screen for the selection in the query.
func HandleQuotePage(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sel := parseSelection(e.Request)

		ledger, _, err := services.LoadLedger(app, e.Auth.Id)
		if err != nil {
			log.Printf("quote: could not load ledger for %s: %v", e.Auth.Id, err)
			return e.String(http.StatusInternalServerError, "Could not load your quote")
		}
		return renderQuote(e, env.buildQuoteData(sel, ledger, e.Auth.Email()))
	}
}

// HandleQuoteAdd resolves the posted selection again on the server and
// appends the result to the user's ledger.
func HandleQuoteAdd(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		sel := parseSelection(e.Request)

		table, err := env.Catalog.Table(sel.Mode)
		if err != nil {
			return ErrorToast(e, http.StatusServiceUnavailable, fmt.Sprintf("The %s price sheet is unavailable", sel.Mode))
		}
		q, err := services.Resolve(table, sel.Path, env.resolveOptions(sel))
		if err != nil {
			if errors.Is(err, services.ErrIncompleteSelection) {
				return ErrorToast(e, http.StatusUnprocessableEntity, "Complete every selection before adding")
			}
			log.Printf("quote_add: resolve %s %+v: %v", sel.Mode, sel.Path, err)
			return ErrorToast(e, http.StatusUnprocessableEntity, "No catalog row matches this selection")
		}

		ledger, err := services.UpdateLedger(app, e.Auth.Id, func(l *services.Ledger) error {
			_, err := l.Add(q)
			return err
		})
		if errors.Is(err, services.ErrUnparsableAmount) {
			return ErrorToast(e, http.StatusUnprocessableEntity, "No price is listed for this selection")
		}
		if err != nil {
			log.Printf("quote_add: ledger for %s: %v", e.Auth.Id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Could not save your quote")
		}

		SetToast(e, ToastSuccess, "Added to list")
		return renderQuote(e, env.buildQuoteData(sel, ledger, e.Auth.Email()))
	}
}

// HandleQuoteDiscount replaces the ledger's discount. An empty value means 0.
func HandleQuoteDiscount(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		sel := parseSelection(e.Request)

		raw := strings.TrimSpace(e.Request.FormValue("discount"))
		amount := decimal.Zero
		if raw != "" {
			d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				return ErrorToast(e, http.StatusBadRequest, "Discount must be a number")
			}
			amount = d
		}

		ledger, err := services.UpdateLedger(app, e.Auth.Id, func(l *services.Ledger) error {
			return l.ApplyDiscount(amount)
		})
		if errors.Is(err, services.ErrNegativeDiscount) {
			return ErrorToast(e, http.StatusBadRequest, "Discount cannot be negative")
		}
		if err != nil {
			log.Printf("quote_discount: ledger for %s: %v", e.Auth.Id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Could not save your quote")
		}

		SetToast(e, ToastSuccess, "Discount applied")
		return renderQuote(e, env.buildQuoteData(sel, ledger, e.Auth.Email()))
	}
}

// HandleQuoteReset clears every entry and the discount.
func HandleQuoteReset(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		sel := parseSelection(e.Request)

		ledger, err := services.UpdateLedger(app, e.Auth.Id, func(l *services.Ledger) error {
			l.Reset()
			return nil
		})
		if err != nil {
			log.Printf("quote_reset: ledger for %s: %v", e.Auth.Id, err)
			return ErrorToast(e, http.StatusInternalServerError, "Could not save your quote")
		}

		SetToast(e, ToastSuccess, "List cleared")
		return renderQuote(e, env.buildQuoteData(sel, ledger, e.Auth.Email()))
	}
}
