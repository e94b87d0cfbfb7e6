package folio

import "math"

// xflow is a dated cash flow prepared for the money-weighted solve: t is the
// time of the flow in years from the period start.
type xflow struct {
	t      float64
	amount float64
}

const (
	xirrMaxIterations = 100
	xirrTolerance     = 1e-6
	// sane bracket for annualized rates: total loss to +1000%/year.
	xirrRateFloor = -0.99
	xirrRateCeil  = 10.0
)

// npv computes the net present value of the flows at the given rate.
func npv(rate float64, flows []xflow) float64 {
	var f float64
	for _, fl := range flows {
		f += fl.amount / math.Pow(1+rate, fl.t)
	}
	return f
}

// solveXIRR finds the annualized rate that zeroes the net present value of
// the flows. It tries Newton's method first, falling back to bisection over
// the bracket [-0.99, +10] when Newton diverges. The second return value is
// false when no deterministic solution was found.
func solveXIRR(flows []xflow) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}

	// Newton's method from a 10% initial guess.
	rate := 0.1
	for i := 0; i < xirrMaxIterations; i++ {
		var f, df float64
		for _, fl := range flows {
			v := math.Pow(1+rate, fl.t)
			f += fl.amount / v
			df += -fl.t * fl.amount / math.Pow(1+rate, fl.t+1)
		}
		if math.Abs(f) < xirrTolerance {
			return rate, true
		}
		if df == 0 || math.IsNaN(df) || math.IsInf(df, 0) {
			break
		}
		next := rate - f/df
		if math.IsNaN(next) || next <= xirrRateFloor || next > xirrRateCeil {
			break
		}
		rate = next
	}

	// Bisection fallback: requires a sign change over the bracket.
	lo, hi := xirrRateFloor, xirrRateCeil
	flo, fhi := npv(lo, flows), npv(hi, flows)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < xirrMaxIterations; i++ {
		mid := (lo + hi) / 2
		fmid := npv(mid, flows)
		if math.Abs(fmid) < xirrTolerance || (hi-lo)/2 < xirrTolerance {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return (lo + hi) / 2, true
}

// moneyWeightedRate computes the annualized money-weighted (XIRR-style)
// return for the capital flows plus the ending value.
//
// Degenerate inputs resolve in closed form: zero flows yield 0; a single
// invested flow yields the plain annualized growth rate. Non-convergence
// falls back to a simple annualized approximation rather than propagating
// NaN.
func moneyWeightedRate(flows []xflow, finalValue, endYears float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	if len(flows) == 1 {
		invested := -flows[0].amount
		if invested <= 0 || finalValue <= 0 {
			return 0
		}
		years := endYears - flows[0].t
		if years <= 0 {
			years = minPeriodYears
		}
		return math.Pow(finalValue/invested, 1/years) - 1
	}

	all := make([]xflow, 0, len(flows)+1)
	all = append(all, flows...)
	all = append(all, xflow{t: endYears, amount: finalValue})

	if rate, ok := solveXIRR(all); ok {
		return rate
	}

	// Fallback: annualize the simple return on the net invested capital.
	var invested float64
	for _, f := range flows {
		invested -= f.amount
	}
	if invested <= 0 || finalValue <= 0 {
		return 0
	}
	years := endYears
	if years <= 0 {
		years = minPeriodYears
	}
	return math.Pow(finalValue/invested, 1/years) - 1
}
