// Package normalize turns locale-formatted price and weight labels into
// decimal values.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice reads a label such as "470 ₴" or "1 250,50 грн". A comma is
// treated as the decimal separator, every other non-digit is dropped, and
// anything that still does not parse yields zero.
func ParsePrice(text string) decimal.Decimal {
	return parseNumber(text)
}

// ParseWeight reads a label such as "0,600 кг" or "0.5 л".
func ParseWeight(text string) decimal.Decimal {
	return parseNumber(text)
}

func parseNumber(text string) decimal.Decimal {
	text = strings.ReplaceAll(text, ",", ".")

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
