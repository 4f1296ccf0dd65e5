// Package pricing derives offer line totals from quantity, costs and margin.
//
//	total_cost = quantity * (unit_cost + assembly_cost)
//	sale_price = total_cost * (1 + profit_rate/100)
//
// Arithmetic is done in decimal and rounded half away from zero to two places.
package pricing

import (
	"fmt"

	"github.com/diewo77/go-offers/validation"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept on money amounts.
const Places = 2

// MaxProfitRate caps margins; anything above is taken for a typo.
const MaxProfitRate = 1000

var hundred = decimal.NewFromInt(100)

// Line is the priced input of one offer item.
type Line struct {
	Quantity     int
	UnitCost     float64
	AssemblyCost float64
	ProfitRate   float64 // percent, 20 means +20%
}

// Totals are the derived amounts of a Line.
type Totals struct {
	TotalCost float64
	SalePrice float64
}

// Validate records violations for l under field names prefixed by prefix
// (for example "items[2]." gives "items[2].quantity").
func Validate(prefix string, l Line, v validation.Violations) {
	validation.PositiveInt(prefix+"quantity", l.Quantity, v)
	validation.NonNegativeFloat(prefix+"unit_cost", l.UnitCost, v)
	validation.NonNegativeFloat(prefix+"assembly_cost", l.AssemblyCost, v)
	ValidateRate(prefix+"profit_rate", l.ProfitRate, v)
}

// ValidateRate checks a profit rate in percent: a finite number in
// [0, MaxProfitRate].
func ValidateRate(field string, rate float64, v validation.Violations) {
	validation.NonNegativeFloat(field, rate, v)
	validation.RangeFloat(field, rate, 0, MaxProfitRate, v)
}

// Compute returns the totals of l. Callers validate first.
func Compute(l Line) Totals {
	total := decimal.NewFromInt(int64(l.Quantity)).
		Mul(decimal.NewFromFloat(l.UnitCost).Add(decimal.NewFromFloat(l.AssemblyCost)))
	sale := total.Mul(hundred.Add(decimal.NewFromFloat(l.ProfitRate))).Div(hundred)
	return Totals{
		TotalCost: total.Round(Places).InexactFloat64(),
		SalePrice: sale.Round(Places).InexactFloat64(),
	}
}

// Sum adds amounts exactly and rounds the result.
func Sum(amounts ...float64) float64 {
	acc := decimal.Zero
	for _, a := range amounts {
		acc = acc.Add(decimal.NewFromFloat(a))
	}
	return acc.Round(Places).InexactFloat64()
}

// Equal reports whether two amounts are the same once rounded.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(Places).Equal(decimal.NewFromFloat(b).Round(Places))
}

// Format renders an amount with two decimals and an optional currency label.
func Format(amount float64, currency string) string {
	s := decimal.NewFromFloat(amount).StringFixed(Places)
	if currency == "" {
		return s
	}
	return fmt.Sprintf("%s %s", s, currency)
}
