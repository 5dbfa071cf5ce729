// Package billing holds the money arithmetic shared by payments, quotes and
// applied treatments.
package billing

import (
	"fmt"
	"math"
)

// DiscountType says how a discount value is read.
type DiscountType string

const (
	// DiscountPercentage reads the discount as a percentage of the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed reads the discount as a currency amount.
	DiscountFixed DiscountType = "fixed"
)

// Valid reports whether d is one of the known discount types.
func (d DiscountType) Valid() bool {
	switch d {
	case DiscountPercentage, DiscountFixed:
		return true
	default:
		return false
	}
}

// ParseDiscountType accepts the wire value; empty means percentage.
func ParseDiscountType(value string) (DiscountType, error) {
	if value == "" {
		return DiscountPercentage, nil
	}
	d := DiscountType(value)
	if !d.Valid() {
		return "", fmt.Errorf("billing: unknown discount type %q", value)
	}
	return d, nil
}

// LineItem is one priced line of a bill.
type LineItem struct {
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Totals is the result of pricing a bill.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
}

// ComputeTotals prices lines and applies one discount. The total never goes
// below zero.
func ComputeTotals(lines []LineItem, discount float64, kind DiscountType) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}

	discountAmount := discount
	if kind == DiscountPercentage {
		discountAmount = subtotal * discount / 100
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          math.Max(0, subtotal-discountAmount),
	}
}

// LineTotal prices a payment line; quantities below one count as one.
func LineTotal(unitPrice float64, quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	return unitPrice * float64(quantity)
}

// AppliedLineTotal prices an applied treatment line with a percentage discount.
func AppliedLineTotal(price float64, quantity int, discountPercent float64) float64 {
	subtotal := price * float64(quantity)
	return subtotal - subtotal*discountPercent/100
}

// ChangeDue is what the clinic hands back for a cash payment.
func ChangeDue(paid, finalAmount float64) float64 {
	return math.Max(0, paid-finalAmount)
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
