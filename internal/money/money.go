package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is the display currency used when a payment carries none.
const DefaultCurrency = "ZMW"

// Format renders amount as a 2-decimal, thousands-grouped currency string,
// e.g. "ZMW 1,025.00". Unknown currency codes fall back to DefaultCurrency.
func Format(amount decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		unit, _ = currency.ParseISO(DefaultCurrency)
	}

	return unit.String() + " " + groupThousands(amount.Round(2).StringFixed(2))
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point decimal string, keeping the sign and fraction intact.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fraction, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + intPart + "." + fraction
	}

	var b strings.Builder
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(".")
	b.WriteString(fraction)
	return b.String()
}
