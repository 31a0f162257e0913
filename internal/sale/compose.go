package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Totals are the monetary figures of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	Discounted     decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Compose computes invoice totals from its lines. The discount applies to the subtotal and tax is
// charged on the discounted amount. Intermediate amounts are rounded half-up to cents.
func Compose(lines []LineParams, discountRate, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}

	subtotal = subtotal.Round(moneyPlaces)
	discounted := subtotal.Mul(decimal.NewFromInt(1).Sub(discountRate.Div(hundred))).Round(moneyPlaces)
	tax := discounted.Mul(taxRate).Div(hundred).Round(moneyPlaces)

	return Totals{
		Subtotal:       subtotal,
		Discounted:     discounted,
		DiscountAmount: subtotal.Sub(discounted),
		TaxAmount:      tax,
		Total:          discounted.Add(tax),
	}
}

// LineTotal returns quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// FormatInvoiceNumber renders a sequence value as INV-00001.
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV-%05d", seq)
}
