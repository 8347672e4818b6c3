package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricequote/collections"
	"pricequote/config"
)

// currentUser resolves the auth cookie to a login record, or nil.
func currentUser(app *pocketbase.PocketBase, cfg *config.Config, r *http.Request) *core.Record {
	cookie, err := r.Cookie(cfg.Auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	rec, err := app.FindAuthRecordByToken(cookie.Value, core.TokenTypeAuth)
	if err != nil {
		return nil
	}
	if rec.Collection().Name != collections.UsersCollection {
		return nil
	}
	return rec
}

// redirectTo sends the browser to url; htmx requests get an HX-Redirect so
// the whole page navigates instead of swapping a fragment.
func redirectTo(e *core.RequestEvent, url string) error {
	if e.Request.Header.Get("HX-Request") == "true" {
		e.Response.Header().Set("HX-Redirect", url)
		return e.NoContent(http.StatusOK)
	}
	return e.Redirect(http.StatusSeeOther, url)
}

// RequireLogin rejects requests without a valid auth cookie by redirecting
// to the login page. On success the login record is stored in e.Auth.
func RequireLogin(app *pocketbase.PocketBase, cfg *config.Config) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		user := currentUser(app, cfg, e.Request)
		if user == nil {
			if c, err := e.Request.Cookie(cfg.Auth.CookieName); err == nil && c.Value != "" {
				log.Printf("middleware: invalid or expired auth cookie, clearing")
				clearAuthCookie(e, cfg)
			}
			return redirectTo(e, "/login")
		}
		e.Auth = user
		return e.Next()
	}
}
