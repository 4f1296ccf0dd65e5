package db

import (
	"regexp"
	"strings"
)

var (
	kvPairRegex   = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)
	kvPassword    = regexp.MustCompile(`(?i)(password=)([^\s]+)`)
	urlCredential = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)
)

// NormalizeDSN accepts either a URL style DSN (postgres://...) or a key=value list.
// Quotes and extra whitespace are stripped and sslmode=disable is added to
// key=value lists that omit it.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// MaskDSN hides passwords so the DSN can be logged.
func MaskDSN(dsn string) string {
	masked := kvPassword.ReplaceAllString(dsn, `${1}***`)
	return urlCredential.ReplaceAllString(masked, `${1}***${3}`)
}
