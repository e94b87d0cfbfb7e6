package folio

import (
	"math"
	"testing"
	"time"
)

// USD is a helper for tests to create usd money from const.
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for tests to create money with no currency set.
func NO(v float64) Money { return M(v, "") }

func day(y int, m time.Month, d int) Date { return NewDate(y, m, d) }

// approxPct fails the test unless got is within tol of want.
func approxPct(t *testing.T, name string, got Percent, want, tol float64) {
	t.Helper()
	if math.IsNaN(float64(got)) || math.IsInf(float64(got), 0) {
		t.Fatalf("%s = %v, want %.4f", name, got, want)
	}
	if diff := math.Abs(float64(got) - want); diff > tol {
		t.Errorf("%s = %.4f, want %.4f (±%.4f)", name, float64(got), want, tol)
	}
}

// moneyEq fails the test unless got equals want.
func moneyEq(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
