// Package auth attributes requests to a principal.
// The application has no login: every request acts as one fixed, configured principal.
package auth

import (
	"context"
	"net/http"
)

type ctxKey string

const principalCtxKey = ctxKey("principal")

// DefaultPrincipal is used when no principal is configured.
const DefaultPrincipal = "admin"

// WithPrincipal stores the acting principal in context.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalCtxKey, name)
}

// PrincipalFromContext extracts the acting principal.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(principalCtxKey).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// PrincipalOrDefault returns the principal in ctx or DefaultPrincipal.
func PrincipalOrDefault(ctx context.Context) string {
	if name, ok := PrincipalFromContext(ctx); ok {
		return name
	}
	return DefaultPrincipal
}

// Middleware attaches the fixed principal to every request context.
func Middleware(principal string) func(http.Handler) http.Handler {
	if principal == "" {
		principal = DefaultPrincipal
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
