package supplier

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses "1.234,56" (decimalComma) or "1,234.56" into a decimal.
// Currency symbols and spaces are ignored.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', ' ', ' ':
			return -1
		}

		return r
	}, s)

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
