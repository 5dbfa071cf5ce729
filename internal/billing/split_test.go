package billing

import "testing"

func TestValidateSplit(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		total   float64
		want    bool
	}{
		{"two halves", []float64{150, 150}, 300, true},
		{"short", []float64{100}, 300, false},
		{"within a cent", []float64{99.995, 200}, 300, true},
		{"one cent off", []float64{299.99}, 300, true},
		{"two cents off", []float64{299.98}, 300, false},
		{"over by two cents", []float64{300.02}, 300, false},
		{"no methods zero total", nil, 0, true},
		{"float noise", []float64{0.1, 0.2}, 0.3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateSplit(tt.amounts, tt.total); got != tt.want {
				t.Fatalf("ValidateSplit(%v, %v) = %v, want %v", tt.amounts, tt.total, got, tt.want)
			}
		})
	}
}

func TestBuildQuote(t *testing.T) {
	q := BuildQuote([]LineItem{{UnitPrice: 300, Quantity: 1}}, 10, DiscountPercentage, []float64{200, 100})
	if q.Total != 270 {
		t.Fatalf("expected total 270, got %v", q.Total)
	}
	if q.SplitValid {
		t.Fatal("split of 300 should not reconcile with 270")
	}
	if q.ChangeDue != 30 || q.Remaining != 0 {
		t.Fatalf("unexpected change/remaining %+v", q)
	}

	q = BuildQuote([]LineItem{{UnitPrice: 300, Quantity: 1}}, 10, DiscountPercentage, []float64{270})
	if !q.SplitValid || q.Remaining != 0 || q.ChangeDue != 0 {
		t.Fatalf("expected exact split, got %+v", q)
	}
}
