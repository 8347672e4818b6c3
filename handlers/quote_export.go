package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricequote/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func buildQuoteExport(app *pocketbase.PocketBase, env *Env, e *core.RequestEvent) (services.QuoteExportData, error) {
	ledger, _, err := services.LoadLedger(app, e.Auth.Id)
	if err != nil {
		return services.QuoteExportData{}, err
	}
	return services.BuildQuoteExportData(env.Config.Quote.Title, e.Auth.Email(), ledger, time.Now()), nil
}

// HandleQuoteExportExcel downloads the user's running quote as an xlsx file.
func HandleQuoteExportExcel(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildQuoteExport(app, env, e)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusInternalServerError, "Could not load your quote")
		}

		xlsxBytes, err := services.GenerateQuoteExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(data.Title), data.ReferenceNumber)

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleQuoteExportPDF downloads the user's running quote as a PDF file.
func HandleQuoteExportPDF(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildQuoteExport(app, env, e)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusInternalServerError, "Could not load your quote")
		}

		pdfBytes, err := services.GenerateQuotePDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s_%s.pdf", sanitizeFilename(data.Title), data.ReferenceNumber)

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
