// Package view renders the HTML pages: a page template wrapped in
// layout.html together with the shared partials.
package view

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-offers/auth"
	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/pricing"
)

var (
	baseDir  string
	once     sync.Once
	devMode  bool
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetVersions sync.Map

	langResolver  = func(_ *http.Request) string { return i18n.DefaultLang }
	themeResolver = func(_ *http.Request) string { return "system" }
	clock         = time.Now
)

var partials = []string{
	"header.html",
	"page-header.html",
	"errors-alert.html",
	"stat-card.html",
	"search-filter.html",
	"field-text.html",
}

// SetDevMode re-reads templates and asset hashes on every render.
func SetDevMode(dev bool) { devMode = dev }

// SetLangResolver sets how a request's language is found (middleware.LangFrom in the server).
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetThemeResolver sets how a request's theme is found.
func SetThemeResolver(f func(*http.Request) string) {
	if f != nil {
		themeResolver = f
	}
}

// layoutBase walks upward from a template path to find the directory that contains layout.html.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		if fi, err := os.Stat(filepath.Join(d, "layout.html")); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d {
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func detectBase() {
	for _, c := range []string{"templates", "../templates", "../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the func map bound to r's language and theme.
func Funcs(r *http.Request) template.FuncMap {
	return funcs(langResolver(r), themeResolver(r))
}

func funcs(lang, theme string) template.FuncMap {
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"theme": func() string { return theme },
		"money": func(amount float64, currency string) string { return pricing.Format(amount, currency) },
		"amount": func(amount float64) string {
			return pricing.Format(amount, "")
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"expired": func(until time.Time) bool {
			if until.IsZero() {
				return false
			}
			y, m, d := clock().Date()
			return until.Before(time.Date(y, m, d, 0, 0, 0, 0, until.Location()))
		},
		"add":   func(a, b int) int { return a + b },
		"year":  func() int { return clock().Year() },
		"asset": assetURL,
		"dict":  dict,
	}
}

// assetURL returns /static/<rel>?v=<hash> so browsers refetch changed files.
// Hashes are cached outside dev mode.
func assetURL(rel string) string {
	if strings.Contains(rel, "//") {
		return rel
	}
	if !devMode {
		if u, ok := assetVersions.Load(rel); ok {
			return u.(string)
		}
	}
	u := "/static/" + rel
	if b, err := os.ReadFile(filepath.Join(filepath.Dir(baseDir), "static", rel)); err == nil {
		sum := sha1.Sum(b)
		u += "?v=" + hex.EncodeToString(sum[:6])
	}
	assetVersions.Store(rel, u)
	return u
}

// dict builds the argument map of a partial: (dict "Label" x "Value" y).
// Odd argument lists yield nil; non-string keys are skipped.
func dict(kv ...any) map[string]any {
	if len(kv)%2 == 1 {
		return nil
	}
	out := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			out[k] = kv[i+1]
		}
	}
	return out
}

// SetBaseDir points the renderer at a template directory.
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests drops cached templates and asset hashes and forgets the base directory.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	assetVersions.Clear()
	baseDir = ""
	once = sync.Once{}
}

func findTemplate(name string) (string, error) {
	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err == nil {
		return mainPath, nil
	}
	for _, dir := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
		c := filepath.Join(dir, name)
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("template %s not found under %s", name, baseDir)
}

// parse builds the template set for name. Its funcs are rebound per request in Render.
func parse(name string) (*template.Template, error) {
	mainPath, err := findTemplate(name)
	if err != nil {
		return nil, err
	}
	base := layoutBase(mainPath)
	layoutPath := filepath.Join(base, "layout.html")
	placeholder := funcs(i18n.DefaultLang, "system")

	contentBytes, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(bytes.ToLower(contentBytes), []byte("<!doctype")) {
		return template.New(name).Funcs(placeholder).ParseFiles(mainPath)
	}
	if fi, err := os.Stat(layoutPath); err != nil || fi.IsDir() {
		return template.New(name).Funcs(placeholder).ParseFiles(mainPath)
	}
	files := []string{layoutPath, mainPath}
	for _, p := range partials {
		pp := filepath.Join(base, "partials", p)
		if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
			files = append(files, pp)
		}
	}
	return template.New("layout.html").Funcs(placeholder).ParseFiles(files...)
}

// Render executes the page template name (e.g. "dashboard.html") with data.
// Common keys (Year, Principal, Lang) are injected when absent.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = clock().Year()
	}
	if _, ok := data["Principal"]; !ok {
		data["Principal"] = auth.PrincipalOrDefault(r.Context())
	}
	if _, ok := data["Lang"]; !ok {
		data["Lang"] = langResolver(r)
	}

	var tpl *template.Template
	if !devMode {
		tplCache.RLock()
		tpl = tplCache.m[name]
		tplCache.RUnlock()
	}
	if tpl == nil {
		parsed, err := parse(name)
		if err != nil {
			return err
		}
		tpl = parsed
		if !devMode {
			tplCache.Lock()
			tplCache.m[name] = tpl
			tplCache.Unlock()
		}
	}
	bound, err := tpl.Clone()
	if err != nil {
		return err
	}
	bound.Funcs(Funcs(r))

	var buf bytes.Buffer
	if err := bound.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
