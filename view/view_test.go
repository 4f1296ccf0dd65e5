package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-offers/auth"
	"github.com/diewo77/go-offers/i18n"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"layout.html":          `<html lang="{{ lang }}">{{ template "header" . }}{{ template "content" . }}</html>`,
		"partials/header.html": `{{ define "header" }}<header>{{ .Principal }}</header>{{ end }}`,
		"page.html":            `{{ define "content" }}<p>{{ t "offer" }}|{{ money .Amount "TRY" }}|{{ amount .Amount }}|{{ add 1 2 }}</p>{{ end }}`,
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRenderBindsFuncsPerRequest(t *testing.T) {
	ResetForTests()
	SetBaseDir(writeTemplates(t))
	t.Cleanup(ResetForTests)
	SetLangResolver(func(r *http.Request) string {
		if l := r.URL.Query().Get("lang"); l != "" {
			return l
		}
		return i18n.DefaultLang
	})
	t.Cleanup(func() { SetLangResolver(func(*http.Request) string { return i18n.DefaultLang }) })

	for _, lang := range []string{"tr", "en"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/?lang="+lang, nil)
		r = r.WithContext(auth.WithPrincipal(r.Context(), "satis"))
		if err := Render(w, r, "page.html", map[string]any{"Amount": 1234.5}); err != nil {
			t.Fatalf("Render(%s): %v", lang, err)
		}
		body := w.Body.String()
		for _, want := range []string{
			`lang="` + lang + `"`,
			"<header>satis</header>",
			i18n.T(lang, "offer"),
			"1234.50 TRY",
			"|3</p>",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("%s: body %q misses %q", lang, body, want)
			}
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q", ct)
		}
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	ResetForTests()
	SetBaseDir(t.TempDir())
	t.Cleanup(ResetForTests)
	err := Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "nope.html", nil)
	if err == nil {
		t.Fatalf("expected an error for a missing template")
	}
}
