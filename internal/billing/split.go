package billing

import "math"

// SplitTolerance is the largest accepted gap between a total and its split.
const SplitTolerance = 0.01

// SplitSum adds the amounts of a payment split.
func SplitSum(amounts []float64) float64 {
	var sum float64
	for _, amount := range amounts {
		sum += amount
	}
	return sum
}

// ValidateSplit reports whether the split amounts cover total within SplitTolerance.
func ValidateSplit(amounts []float64, total float64) bool {
	return math.Abs(SplitSum(amounts)-total) <= SplitTolerance+1e-9
}

// Quote is a priced draft bill together with its split check.
type Quote struct {
	Totals
	Paid       float64 `json:"paid"`
	Remaining  float64 `json:"remaining"`
	ChangeDue  float64 `json:"changeDue"`
	SplitValid bool    `json:"splitValid"`
}

// BuildQuote prices lines and checks the split against the discounted total.
func BuildQuote(lines []LineItem, discount float64, kind DiscountType, amounts []float64) Quote {
	totals := ComputeTotals(lines, discount, kind)
	paid := SplitSum(amounts)
	return Quote{
		Totals:     totals,
		Paid:       paid,
		Remaining:  math.Max(0, totals.Total-paid),
		ChangeDue:  ChangeDue(paid, totals.Total),
		SplitValid: ValidateSplit(amounts, totals.Total),
	}
}
