package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"pricequote/collections"
	"pricequote/config"
	"pricequote/handlers"
	"pricequote/services"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate
//go:generate curl -sSfL -o static/htmx.min.js https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js

// staticDir holds the stylesheet, the toast script and the vendored htmx build.
const staticDir = "./static"

func staticFiles() func(*core.RequestEvent) error {
	return apis.Static(os.DirFS(staticDir), false)
}

func main() {
	app := pocketbase.New()

	var configPath string
	app.RootCmd.PersistentFlags().StringVar(&configPath, "config", "pricequote.toml", "path to the TOML config file")
	app.RootCmd.AddCommand(newCatalogCommand(&configPath))

	env := &handlers.Env{}

	// Load config, create collections, seed the login and read the workbook on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		env.Config = cfg

		collections.Setup(app)
		if err := collections.SeedUser(app, cfg.Auth.SeedEmail, cfg.Auth.SeedPassword); err != nil {
			log.Printf("Warning: seed user failed: %v", err)
		}

		env.Catalog = services.LoadCatalogFile(cfg.Catalog.Path)
		return se.Next()
	})

	// Routes are registered after the hook above has filled env.
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Serve static files from ./static
		se.Router.GET("/static/{path...}", staticFiles())

		// ── Login ────────────────────────────────────────────────
		se.Router.GET("/login", handlers.HandleLoginPage(app, env.Config))
		se.Router.POST("/login", handlers.HandleLogin(app, env.Config))
		se.Router.POST("/logout", handlers.HandleLogout(env.Config))

		se.Router.GET("/{$}", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/quote")
		})

		// ── Quote (login required) ───────────────────────────────
		quote := se.Router.Group("/quote")
		quote.BindFunc(handlers.RequireLogin(app, env.Config))
		quote.GET("", handlers.HandleQuotePage(app, env))
		quote.POST("/items", handlers.HandleQuoteAdd(app, env))
		quote.POST("/discount", handlers.HandleQuoteDiscount(app, env))
		quote.POST("/reset", handlers.HandleQuoteReset(app, env))
		quote.GET("/export/excel", handlers.HandleQuoteExportExcel(app, env))
		quote.GET("/export/pdf", handlers.HandleQuoteExportPDF(app, env))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
