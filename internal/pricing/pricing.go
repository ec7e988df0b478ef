// Package pricing computes per-line sale amounts. All arithmetic stays in
// exact decimals; rounding to two places happens once, at the persistence
// boundary in the sales service, never here.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeLine returns the unrounded subtotal and tax amount for one line.
// taxRatePercent is a percentage (13 means 13%). Callers drop qty <= 0 lines
// before calling.
func ComputeLine(unitPrice, taxRatePercent, qty decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = unitPrice.Mul(qty)
	tax = subtotal.Mul(taxRatePercent).Div(hundred)
	return subtotal, tax
}
