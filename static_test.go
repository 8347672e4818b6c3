package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func serveStatic(t *testing.T, name string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/static/"+name, nil)
	req.SetPathValue("path", name)
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	if err := staticFiles()(e); err != nil {
		t.Fatalf("serve %s: %v", name, err)
	}
	return rec
}

func TestStaticFiles_ServesPageAssets(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"app.css", "#toast"},
		{"app.js", "showToast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveStatic(t, tt.name)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("%s does not contain %q", tt.name, tt.want)
			}
		})
	}
}

func TestStaticFiles_MissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/static/nope.js", nil)
	req.SetPathValue("path", "nope.js")
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = httptest.NewRecorder()
	if err := staticFiles()(e); err == nil {
		t.Error("expected an error for a missing asset")
	}
}
