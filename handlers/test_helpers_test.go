package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"pricequote/config"
	"pricequote/services"
	"pricequote/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newAuthedEvent is newTestRequestEvent for a request RequireLogin has
// already let through.
func newAuthedEvent(app *pocketbase.PocketBase, user *core.Record, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := newTestRequestEvent(app, req, rec)
	e.Auth = user
	return e
}

// newTestEnv returns a test app with one user and an Env over the fixture catalog.
func newTestEnv(t *testing.T) (*pocketbase.PocketBase, *Env, *core.Record) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	user := testhelpers.CreateTestUser(t, app, "rep@orascoptic.com")
	cfg := config.Defaults()
	env := &Env{
		Config:  &cfg,
		Catalog: services.LoadCatalog(bytes.NewReader(testhelpers.CatalogWorkbook(t))),
	}
	return app, env, user
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func accessoriesForm(market, category, sub, desc string) url.Values {
	return url.Values{
		"mode":   {"Accessories"},
		"market": {market},
		"level0": {category},
		"level1": {sub},
		"level2": {desc},
	}
}
