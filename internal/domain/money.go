package domain

import "github.com/shopspring/decimal"

func init() {
	// The API contract carries prices and totals as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TaxRate is applied to the cart subtotal at checkout.
var TaxRate = decimal.RequireFromString("0.1")

// Tax returns the tax owed on subtotal. No rounding is applied here.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate)
}

// Money formats an amount for display, rounded to cents.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
