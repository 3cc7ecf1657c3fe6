package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Percent returns pct percent of amount, rounded to cents.
func Percent(amount, pct float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// FormatEUR renders an amount the German way, e.g. 1.234,50 €.
func FormatEUR(v float64) string {
	fixed := decimal.NewFromFloat(v).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String() + "," + frac + " €"
	if negative {
		return "-" + out
	}
	return out
}

func formatNumber(v float64) string {
	s := decimal.NewFromFloat(v).String()
	return strings.Replace(s, ".", ",", 1)
}
