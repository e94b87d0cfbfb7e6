package folio

import (
	"math"
	"testing"
)

func TestSolveXIRR(t *testing.T) {
	tests := []struct {
		name  string
		flows []xflow
		want  float64
	}{
		{"one year 10%", []xflow{{0, -1000}, {1, 1100}}, 0.10},
		{"two years 10%", []xflow{{0, -1000}, {2, 1210}}, 0.10},
		{"half year doubles", []xflow{{0, -1000}, {0.5, 2000}}, 3.0},
		{"staggered contributions", []xflow{{0, -1000}, {0.5, -1000}, {1, 2200}}, 0.13475},
		{"losing year", []xflow{{0, -1000}, {1, 900}}, -0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := solveXIRR(tt.flows)
			if !ok {
				t.Fatal("solveXIRR() did not converge")
			}
			if math.Abs(rate-tt.want) > 1e-4 {
				t.Errorf("solveXIRR() = %.6f, want %.6f", rate, tt.want)
			}
			if f := npv(rate, tt.flows); math.Abs(f) > 1e-3 {
				t.Errorf("npv at solution = %v, want ~0", f)
			}
		})
	}
}

func TestSolveXIRR_NoSolution(t *testing.T) {
	// All-positive flows have no root in the bracket.
	if _, ok := solveXIRR([]xflow{{0, 100}, {1, 100}}); ok {
		t.Error("solveXIRR() converged on all-positive flows")
	}
	if _, ok := solveXIRR([]xflow{{0, -100}}); ok {
		t.Error("solveXIRR() converged on a single flow")
	}
}

func TestMoneyWeightedRate_Degenerate(t *testing.T) {
	if got := moneyWeightedRate(nil, 1000, 1); got != 0 {
		t.Errorf("no flows: rate = %v, want 0", got)
	}

	// Single invested flow: plain annualized growth, no solver involved.
	got := moneyWeightedRate([]xflow{{0, -1000}}, 1100, 1)
	if math.Abs(got-0.10) > 1e-9 {
		t.Errorf("single flow: rate = %.6f, want 0.10", got)
	}

	// Single flow into a worthless position cannot be annualized.
	if got := moneyWeightedRate([]xflow{{0, -1000}}, 0, 1); got != 0 {
		t.Errorf("worthless final value: rate = %v, want 0", got)
	}
}

func TestMoneyWeightedRate_NeverNaN(t *testing.T) {
	cases := [][]xflow{
		{{0, -1000}, {0.5, 5000}},
		{{0, 1000}, {0.5, 1000}},
		{{0, -1}, {0.001, -1}},
	}
	for _, flows := range cases {
		got := moneyWeightedRate(flows, 1, 1)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("moneyWeightedRate(%v) = %v", flows, got)
		}
	}
}
