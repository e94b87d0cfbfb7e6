package folio

import (
	"fmt"
	"math"
)

// Percent is a percentage value (5.0 means 5%). Derived rates are float
// math, so comparisons go through Equal rather than ==.
type Percent float64

// percentPrecision is the tolerance under which two derived percentages are
// considered equal.
const percentPrecision = 1e-4

// Equal reports whether two percentages are equal within tolerance.
func (p Percent) Equal(q Percent) bool {
	return math.Abs(float64(p-q)) < percentPrecision
}

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString is like String with an explicit sign; zero renders as "-".
func (p Percent) SignedString() string {
	if p.Equal(0) {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", float64(p))
}
