package order

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals are the money fields of an order. Every amount is rounded to the
// storage precision of two decimal places.
type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	VATAmount   decimal.Decimal
	ServiceFee  decimal.Decimal
	Total       decimal.Decimal
}

// LineSubtotal is unit price times quantity.
func LineSubtotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// ComputeTotals applies the shop's VAT and service-fee percentages to
// subtotal plus delivery fee.
func ComputeTotals(subtotal, deliveryFee, vatRate, serviceFeeRate decimal.Decimal) Totals {
	base := subtotal.Add(deliveryFee)
	vat := base.Mul(vatRate).Div(hundred).Round(2)
	svc := base.Mul(serviceFeeRate).Div(hundred).Round(2)
	return Totals{
		Subtotal:    subtotal.Round(2),
		DeliveryFee: deliveryFee.Round(2),
		VATAmount:   vat,
		ServiceFee:  svc,
		Total:       base.Add(vat).Add(svc).Round(2),
	}
}
