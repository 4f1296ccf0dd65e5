package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/go-offers/i18n"
)

type ctxKey string

const (
	ctxLang  ctxKey = "pref_lang"
	ctxTheme ctxKey = "pref_theme"
)

var themes = map[string]bool{"light": true, "dark": true, "system": true}

// Prefs extracts language/theme preferences (query > cookie > Accept-Language) and stores them in context.
// Query-provided prefs are persisted in cookies for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: "lang", Value: lang, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}

		theme := "system"
		if c, err := r.Cookie("theme"); err == nil && themes[c.Value] {
			theme = c.Value
		}
		if qt := r.URL.Query().Get("theme"); themes[qt] {
			theme = qt
			http.SetCookie(w, &http.Cookie{Name: "theme", Value: theme, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		}
		ctx := context.WithValue(r.Context(), ctxLang, lang)
		ctx = context.WithValue(ctx, ctxTheme, theme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.DefaultLang
}

// ThemeFrom returns theme preference from context or fallback.
func ThemeFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxTheme).(string); ok && v != "" {
		return v
	}
	return "system"
}
