package validation

import (
	"math"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLength(field, value string, maxLen int, v Violations) {
	if len([]rune(value)) > maxLen {
		v[field] = "too_long"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// NonNegativeFloat also rejects NaN and infinities.
func NonNegativeFloat(field string, val float64, v Violations) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		v[field] = "invalid_number"
		return
	}
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// RangeFloat requires minVal <= val <= maxVal. It does not override an
// earlier violation of the same field.
func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if _, seen := v[field]; seen {
		return
	}
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Date parses an ISO date (YYYY-MM-DD). A blank value is reported as required.
func Date(field, value string, v Violations) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		v[field] = "required"
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		v[field] = "invalid_date"
		return time.Time{}
	}
	return d
}
