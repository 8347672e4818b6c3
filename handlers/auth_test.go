package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"pricequote/config"
	"pricequote/testhelpers"
)

func authCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleLoginPage_RendersForm(t *testing.T) {
	app, env, _ := newTestEnv(t)
	handler := HandleLoginPage(app, env.Config)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"<!doctype html>", `name="email"`, `name="password"`, "Orascoptic Price Search")
}

func TestHandleLogin_Success(t *testing.T) {
	app, env, user := newTestEnv(t)
	handler := HandleLogin(app, env.Config)

	req := formRequest(http.MethodPost, "/login", url.Values{
		"email":    {"Rep@Orascoptic.com "},
		"password": {testhelpers.TestPassword},
	})
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/quote" {
		t.Errorf("expected redirect to /quote, got %q", loc)
	}

	cookie := authCookie(t, rec, env.Config.Auth.CookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected auth cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("auth cookie should be HttpOnly")
	}
	if cookie.MaxAge != 7*24*60*60 {
		t.Errorf("cookie MaxAge = %d, want 7 days", cookie.MaxAge)
	}

	// The issued token must resolve back to the same user.
	check := httptest.NewRequest(http.MethodGet, "/quote", nil)
	check.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	got := currentUser(app, env.Config, check)
	if got == nil || got.Id != user.Id {
		t.Errorf("token did not resolve to the logged-in user")
	}
}

func TestHandleLogin_HTMXRedirect(t *testing.T) {
	app, env, _ := newTestEnv(t)
	handler := HandleLogin(app, env.Config)

	req := formRequest(http.MethodPost, "/login", url.Values{
		"email":    {"rep@orascoptic.com"},
		"password": {testhelpers.TestPassword},
	})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/quote")
}

func TestHandleLogin_Failures(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		email      string
		password   string
		wantStatus int
		wantText   string
	}{
		{"wrong password", "", "rep@orascoptic.com", "nope", http.StatusUnauthorized, "Invalid email or password"},
		{"unknown user", "", "ghost@orascoptic.com", testhelpers.TestPassword, http.StatusUnauthorized, "Invalid email or password"},
		{"missing fields", "", "", "", http.StatusUnprocessableEntity, "Email and password are required"},
		{"outside domain", "example.com", "rep@orascoptic.com", testhelpers.TestPassword, http.StatusForbidden, "domain is not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, env, _ := newTestEnv(t)
			env.Config.Auth.AllowedDomain = tt.domain
			handler := HandleLogin(app, env.Config)

			req := formRequest(http.MethodPost, "/login", url.Values{
				"email":    {tt.email},
				"password": {tt.password},
			})
			rec := httptest.NewRecorder()
			if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			testhelpers.AssertHTMLContains(t, rec.Body.String(), tt.wantText)
			if authCookie(t, rec, env.Config.Auth.CookieName) != nil {
				t.Error("no auth cookie should be set on failure")
			}
		})
	}
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	cfg := config.Defaults()
	handler := HandleLogout(&cfg)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	cookie := authCookie(t, rec, cfg.Auth.CookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("expected an expiring auth cookie, got %+v", cookie)
	}
}

func TestRequireLogin(t *testing.T) {
	app, env, user := newTestEnv(t)
	token, err := user.NewAuthToken()
	if err != nil {
		t.Fatalf("NewAuthToken: %v", err)
	}
	mw := RequireLogin(app, env.Config)

	t.Run("no cookie redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		rec := httptest.NewRecorder()
		if err := mw(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("expected 303 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/quote/items", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		if err := mw(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/login")
	})

	t.Run("bad token clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.AddCookie(&http.Cookie{Name: env.Config.Auth.CookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		if err := mw(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Header().Get("Location") != "/login" {
			t.Errorf("expected redirect to /login")
		}
		if c := authCookie(t, rec, env.Config.Auth.CookieName); c == nil || c.MaxAge >= 0 {
			t.Error("expected the invalid cookie to be cleared")
		}
	})

	t.Run("valid cookie passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.AddCookie(&http.Cookie{Name: env.Config.Auth.CookieName, Value: token})
		rec := httptest.NewRecorder()
		e := newTestRequestEvent(app, req, rec)
		if err := mw(e); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if e.Auth == nil || e.Auth.Id != user.Id {
			t.Error("expected e.Auth to be the logged-in user")
		}
		if rec.Header().Get("Location") != "" {
			t.Error("authenticated request should not be redirected")
		}
	})
}

func TestHandleLoginPage_LoggedInRedirects(t *testing.T) {
	app, env, user := newTestEnv(t)
	token, err := user.NewAuthToken()
	if err != nil {
		t.Fatalf("NewAuthToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: env.Config.Auth.CookieName, Value: token})
	rec := httptest.NewRecorder()
	if err := HandleLoginPage(app, env.Config)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Header().Get("Location") != "/quote" {
		t.Errorf("expected redirect to /quote, got %q", rec.Header().Get("Location"))
	}
}
