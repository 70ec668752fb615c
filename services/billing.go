package services

import (
	"studiocrm-backend/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the derived money fields of an order.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TaxAmount  float64 `json:"taxAmount"`
	FinalTotal float64 `json:"finalTotal"`
	DueAmount  float64 `json:"dueAmount"`
}

// Calculate derives the order totals from the caller supplied line totals.
// tax is a percentage. Nothing is rounded, and NaN or infinite inputs count as 0.
// An empty order with a discount yields a negative total, which is allowed.
func Calculate(lineTotals []float64, tax, discount, advance float64) Totals {
	subtotal := decimal.Zero
	for _, t := range lineTotals {
		subtotal = subtotal.Add(toDecimal(t))
	}

	taxAmount := subtotal.Mul(toDecimal(tax)).Div(hundred)
	final := subtotal.Add(taxAmount).Sub(toDecimal(discount))
	due := final.Sub(toDecimal(advance))

	return Totals{
		Subtotal:   subtotal.InexactFloat64(),
		TaxAmount:  taxAmount.InexactFloat64(),
		FinalTotal: final.InexactFloat64(),
		DueAmount:  due.InexactFloat64(),
	}
}

func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(utils.Finite(f))
}
