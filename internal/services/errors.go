package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/go-offers/validation"
)

var (
	// ErrNotFound is returned when a referenced offer, customer or product does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a feature that is switched off, such as document export.
	ErrUnavailable = errors.New("feature unavailable")
)

// ValidationError carries field violations of rejected input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// likePattern turns a user query into a LOWER(name) LIKE pattern with the
// wildcards of the query escaped.
func likePattern(q string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(q))
	return "%" + esc + "%"
}

const nameLikeClause = `LOWER(name) LIKE ? ESCAPE '\'`
