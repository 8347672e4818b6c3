package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricequote/collections"
	"pricequote/config"
	"pricequote/templates"
)

const invalidLogin = "Invalid email or password"

func setAuthCookie(e *core.RequestEvent, cfg *config.Config, token string) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:     cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.CookieMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(e *core.RequestEvent, cfg *config.Config) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:     cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Auth.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func renderLogin(e *core.RequestEvent, status int, data templates.LoginData) error {
	var component templ.Component
	if e.Request.Header.Get("HX-Request") == "true" {
		component = templates.LoginContent(data)
	} else {
		component = templates.LoginPage(data)
	}
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	return component.Render(e.Request.Context(), e.Response)
}

// HandleLoginPage shows the login form, or skips it for a logged-in user.
func HandleLoginPage(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if currentUser(app, cfg, e.Request) != nil {
			return e.Redirect(http.StatusSeeOther, "/quote")
		}
		return renderLogin(e, http.StatusOK, templates.LoginData{Title: cfg.Quote.Title})
	}
}

// HandleLogin checks the submitted credentials and sets the auth cookie.
func HandleLogin(app *pocketbase.PocketBase, cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		email := strings.ToLower(strings.TrimSpace(e.Request.FormValue("email")))
		password := e.Request.FormValue("password")
		data := templates.LoginData{Title: cfg.Quote.Title, Email: email}

		if email == "" || password == "" {
			data.Error = "Email and password are required"
			return renderLogin(e, http.StatusUnprocessableEntity, data)
		}

		if !cfg.EmailAllowed(email) {
			log.Printf("login: rejected %q, outside allowed domain", email)
			data.Error = "This email domain is not allowed"
			return renderLogin(e, http.StatusForbidden, data)
		}

		user, err := app.FindAuthRecordByEmail(collections.UsersCollection, email)
		if err != nil || !user.ValidatePassword(password) {
			log.Printf("login: failed login for %q", email)
			data.Error = invalidLogin
			return renderLogin(e, http.StatusUnauthorized, data)
		}

		token, err := user.NewAuthToken()
		if err != nil {
			log.Printf("login: could not issue token for %q: %v", email, err)
			return ErrorToast(e, http.StatusInternalServerError, "Login failed, please try again")
		}

		setAuthCookie(e, cfg, token)
		log.Printf("login: %q logged in", email)
		return redirectTo(e, "/quote")
	}
}

// HandleLogout clears the auth cookie.
func HandleLogout(cfg *config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		clearAuthCookie(e, cfg)
		return redirectTo(e, "/login")
	}
}
