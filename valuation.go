package folio

import (
	"fmt"
	"slices"
	"sort"
)

// ValuationPoint is one snapshot of a holding's (or the whole portfolio's)
// total market value and cost basis on a given date. The series is supplied
// by an external valuation collaborator; the engine only consumes it.
type ValuationPoint struct {
	Date  Date  `json:"date"`
	Value Money `json:"value"` // total market value
	Cost  Money `json:"cost"`  // cost basis at that date
}

// ValuationSeries stores a chronological series of valuation points. Dates
// are unique and the series is always sorted.
type ValuationSeries struct {
	points []ValuationPoint
}

// NewValuationSeries creates a series from the given points.
func NewValuationSeries(points ...ValuationPoint) *ValuationSeries {
	s := &ValuationSeries{}
	for _, p := range points {
		s.Append(p)
	}
	return s
}

// Len returns the number of points in the series.
func (s *ValuationSeries) Len() int { return len(s.points) }

// Append adds a point to the series. An existing point at that date is
// overwritten, giving priority to the last data.
func (s *ValuationSeries) Append(p ValuationPoint) *ValuationSeries {
	if i := slices.IndexFunc(s.points, func(q ValuationPoint) bool { return q.Date == p.Date }); i >= 0 {
		s.points[i] = p
		return s
	}
	s.points = append(s.points, p)
	sort.SliceStable(s.points, func(i, j int) bool { return s.points[i].Date.Before(s.points[j].Date) })
	return s
}

// AsOf returns the latest point on or before the given date.
func (s *ValuationSeries) AsOf(on Date) (ValuationPoint, bool) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if !s.points[i].Date.After(on) {
			return s.points[i], true
		}
	}
	return ValuationPoint{}, false
}

// Before returns the latest point strictly before the given date.
func (s *ValuationSeries) Before(on Date) (ValuationPoint, bool) {
	return s.AsOf(on.Add(-1))
}

// First returns the earliest point in the series.
func (s *ValuationSeries) First() (ValuationPoint, bool) {
	if len(s.points) == 0 {
		return ValuationPoint{}, false
	}
	return s.points[0], true
}

// Last returns the latest point in the series.
func (s *ValuationSeries) Last() (ValuationPoint, bool) {
	if len(s.points) == 0 {
		return ValuationPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the points in chronological order.
func (s *ValuationSeries) Points() []ValuationPoint {
	return slices.Clone(s.points)
}

// ValuationSource is the contract of the external valuation collaborator:
// it produces valuation series per symbol and for the whole portfolio, in a
// given currency. All amounts are assumed pre-converted to that currency.
type ValuationSource interface {
	PortfolioSeries(currency string) (*ValuationSeries, error)
	SymbolSeries(symbol, currency string) (*ValuationSeries, error)
}

// StaticValuations is a ValuationSource backed by in-memory series, used by
// the demo store and by tests.
type StaticValuations struct {
	Portfolio *ValuationSeries
	Symbols   map[string]*ValuationSeries
}

// NewStaticValuations creates an empty static source.
func NewStaticValuations() *StaticValuations {
	return &StaticValuations{
		Portfolio: NewValuationSeries(),
		Symbols:   make(map[string]*ValuationSeries),
	}
}

// PortfolioSeries implements ValuationSource.
func (v *StaticValuations) PortfolioSeries(currency string) (*ValuationSeries, error) {
	return v.Portfolio, nil
}

// SymbolSeries implements ValuationSource.
func (v *StaticValuations) SymbolSeries(symbol, currency string) (*ValuationSeries, error) {
	s, ok := v.Symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("no valuation series for symbol %q", symbol)
	}
	return s, nil
}
