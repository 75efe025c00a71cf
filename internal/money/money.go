// Package money rounds and formats currency amounts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds an amount to whole cents.
func Round(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// Decimal converts an amount into a cent-rounded decimal.
func Decimal(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// Format renders an amount as dollars with thousands separators, e.g. "$1,234.50".
// Negative amounts keep their sign in front of the dollar symbol.
func Format(amount float64) string {
	d := Decimal(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + cents
}

// Percent renders a percentage with one decimal place, e.g. "12.5%".
func Percent(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(1) + "%"
}
