package folio

import (
	"errors"
	"fmt"
	"math"
)

// minPeriodYears floors period lengths in annualization math, so that capital
// deployed just before the end date cannot blow up a division. Extreme
// annualized figures for heavily back-loaded flows are still produced; capping
// them is a presentation concern.
const minPeriodYears = 1.0 / 365.25

// ErrNoQuantity reports an attempt to derive a unit price for an aggregate
// account holding with a zero quantity. It indicates a corrupted event log.
var ErrNoQuantity = errors.New("cannot derive a unit price from a zero quantity")

// CapitalGains decomposes the capital part of a return into its realized and
// unrealized components.
type CapitalGains struct {
	Realized      Money
	Unrealized    Money
	RealizedPct   Percent // gain over the cost basis of the shares sold
	UnrealizedPct Percent // gain over the cost basis of the open lots
}

// DividendIncome aggregates the income part of a return.
type DividendIncome struct {
	Total           Money
	Pct             Percent // income over the capital invested in the period
	AnnualizedYield Percent // income over average capital, per year
}

// ReturnMetrics is the complete value object emitted by the return
// calculator. It is always scoped to (holding-or-portfolio, currency, range),
// recomputed on demand, never mutated in place, and safe to share across
// concurrent readers.
type ReturnMetrics struct {
	Start    Date
	End      Date
	Currency string

	TotalInvested  Money // capital moved in during the range (buys, deposits)
	TotalWithdrawn Money // capital moved out during the range (sells, withdrawals)
	CostBasis      Money // cost of the open position at range end
	CurrentValue   Money // market value at range end

	RealizedPnL   Money
	UnrealizedPnL Money
	Capital       CapitalGains
	Dividends     DividendIncome

	TotalPnL    Money
	TotalReturn Percent // period P&L over average capital

	TimeWeightedReturn  Percent // annualized over weighted deployment time
	MoneyWeightedReturn Percent // annualized XIRR-style rate

	PeriodYears float64
}

// scope pins a requested range to the data: events filtered to the range,
// boundary valuations resolved. For a bounded range the start valuation is
// the latest point strictly before the range, so "change during period" is
// measured against the previous close.
type scope struct {
	r      Range
	events []Event        // events within the range
	all    []Event        // events up to the range end
	start  ValuationPoint // zero value when the range is open at the start
	end    ValuationPoint
}

func newScope(events []Event, series *ValuationSeries, r Range) scope {
	sc := scope{r: r}
	for _, e := range events {
		if e.When().After(r.To) {
			continue
		}
		sc.all = append(sc.all, e)
		if r.Contains(e.When()) {
			sc.events = append(sc.events, e)
		}
	}
	if p, ok := series.AsOf(r.To); ok {
		sc.end = p
	}
	if r.Bounded() {
		if p, ok := series.Before(r.From); ok {
			sc.start = p
		}
	}
	return sc
}

// startDate returns the date the scoped period effectively begins: the range
// start when bounded, the first event otherwise.
func (sc scope) startDate() Date {
	if sc.r.Bounded() {
		return sc.r.From
	}
	if len(sc.all) > 0 {
		return sc.all[0].When()
	}
	return sc.r.To
}

// years returns the scoped period length in fractional years, floored to a
// small positive value.
func (sc scope) years() float64 {
	y := sc.startDate().YearsUntil(sc.r.To)
	if y < minPeriodYears {
		y = minPeriodYears
	}
	return y
}

// Calculate reduces a chronological event list and a valuation series to a
// ReturnMetrics for the given range. It is a pure, stateless reduction: no
// I/O, no retained state, fresh structures on every call.
//
// Fewer than two valuation points or an empty event list produce an all-zero
// metrics object, not an error. A sell exceeding the open quantity surfaces
// ErrOversell.
func Calculate(events []Event, series *ValuationSeries, r Range, currency string) (*ReturnMetrics, error) {
	m := &ReturnMetrics{Start: r.From, End: r.To, Currency: currency}
	zero := M(0, currency)
	m.TotalInvested = zero
	m.TotalWithdrawn = zero
	m.CostBasis = zero
	m.CurrentValue = zero
	m.RealizedPnL = zero
	m.UnrealizedPnL = zero
	m.TotalPnL = zero
	m.Capital = CapitalGains{Realized: zero, Unrealized: zero}
	m.Dividends = DividendIncome{Total: zero}

	if len(events) == 0 || series == nil || series.Len() < 2 {
		return m, nil
	}

	sc := newScope(events, series, r)
	m.PeriodYears = sc.years()

	// Replay every holding's events through a fresh FIFO queue up to the
	// range end.
	var open []Lot
	var sales []Sale
	for _, symbol := range symbolsOf(sc.all) {
		lots, symbolSales, err := BuildLots(eventsOf(sc.all, symbol))
		if err != nil {
			return nil, fmt.Errorf("replaying %s: %w", symbol, err)
		}
		open = append(open, lots...)
		sales = append(sales, symbolSales...)
	}

	// Realized gains and the cost of the shares sold, within the range.
	realized, soldCost := zero, zero
	for _, s := range sales {
		if sc.r.Contains(s.Date) {
			realized = realized.Add(s.Gain())
			soldCost = soldCost.Add(s.Cost)
		}
	}

	// Cost basis: open lots plus the net capital held in account holdings.
	lotCost := CostBasis(open)
	accountCapital := zero
	for _, e := range sc.all {
		switch v := e.(type) {
		case Deposit:
			accountCapital = accountCapital.Add(v.Amount)
		case Withdraw:
			accountCapital = accountCapital.Sub(v.Amount)
		}
	}
	m.CostBasis = lotCost.Add(accountCapital)
	m.CurrentValue = zero.Add(sc.end.Value)

	flows := CashFlows(sc.events)
	for _, f := range flows {
		switch {
		case f.Income:
			m.Dividends.Total = m.Dividends.Total.Add(f.Amount)
		case f.Amount.IsNegative():
			m.TotalInvested = m.TotalInvested.Add(f.Amount.Neg())
		default:
			m.TotalWithdrawn = m.TotalWithdrawn.Add(f.Amount)
		}
	}

	m.RealizedPnL = realized
	if sc.r.Bounded() {
		// Change during the period, not the lifetime figure: market value
		// delta net of capital moved in or out, minus the gains already
		// locked in by sales. With no trades this is exactly endValue -
		// startValue.
		delta := sc.end.Value.Sub(sc.start.Value)
		trading := netContribution(flows)
		m.UnrealizedPnL = delta.Sub(trading).Sub(realized)
	} else {
		m.UnrealizedPnL = m.CurrentValue.Sub(m.CostBasis)
	}

	m.Capital = CapitalGains{
		Realized:      realized,
		Unrealized:    m.UnrealizedPnL,
		RealizedPct:   ratio(realized, soldCost),
		UnrealizedPct: ratio(m.UnrealizedPnL, m.CostBasis),
	}

	m.TotalPnL = realized.Add(m.UnrealizedPnL).Add(m.Dividends.Total)

	// Average capital base: start value plus half the net contribution
	// (simple Dietz). Since inception the start value is zero, so the base
	// degenerates to the capital invested.
	var averageCapital Money
	if sc.r.Bounded() {
		averageCapital = sc.start.Value.Add(netContribution(flows).Div(Q(2)))
	} else {
		averageCapital = m.TotalInvested
	}
	m.TotalReturn = ratio(m.TotalPnL, averageCapital)

	m.Dividends.Pct = ratio(m.Dividends.Total, m.TotalInvested)
	if averageCapital.IsPositive() {
		m.Dividends.AnnualizedYield = Percent(100 * m.Dividends.Total.AsFloat() / averageCapital.AsFloat() / m.PeriodYears)
	}

	m.TimeWeightedReturn = timeWeightedReturn(sc, flows, m.TotalReturn)
	m.MoneyWeightedReturn = moneyWeightedReturn(sc, flows)

	return m, nil
}

// ratio returns 100*num/den as a Percent, or exactly 0 when the base is zero
// or negative. Never NaN or Inf.
func ratio(num, den Money) Percent {
	if !den.IsPositive() {
		return 0
	}
	return Percent(100 * num.AsFloat() / den.AsFloat())
}

// timeWeightedReturn annualizes the period return over the weighted average
// time the capital was actually deployed, correcting for uneven contribution
// timing. Back-loaded flows legitimately produce large annualized numbers;
// they are not capped here.
func timeWeightedReturn(sc scope, flows []CashFlow, totalReturn Percent) Percent {
	start := sc.startDate()
	totalDays := float64(sc.r.To.Sub(start))
	if totalDays < 1 {
		totalDays = 1
	}

	var contributed, weighted float64
	for _, f := range capitalFlows(flows) {
		if !f.Amount.IsNegative() {
			continue // only invested capital weights the clock
		}
		amount := -f.Amount.AsFloat()
		w := float64(sc.r.To.Sub(f.Date)) / totalDays
		contributed += amount
		weighted += amount * w
	}

	weightedYears := sc.years()
	if contributed > 0 {
		weightedYears = sc.years() * (weighted / contributed)
	}
	if weightedYears < minPeriodYears {
		weightedYears = minPeriodYears
	}

	frac := float64(totalReturn) / 100
	if frac <= -1 {
		return Percent(-100)
	}
	return Percent(100 * (math.Pow(1+frac, 1/weightedYears) - 1))
}

// moneyWeightedReturn prepares the XIRR flow set for the scope: the start
// value as an initial outlay for bounded ranges, the external capital flows
// (income excluded), and the ending value.
func moneyWeightedReturn(sc scope, flows []CashFlow) Percent {
	start := sc.startDate()
	var xflows []xflow
	if sc.r.Bounded() && sc.start.Value.IsPositive() {
		xflows = append(xflows, xflow{t: 0, amount: -sc.start.Value.AsFloat()})
	}
	for _, f := range capitalFlows(flows) {
		xflows = append(xflows, xflow{
			t:      start.YearsUntil(f.Date),
			amount: f.Amount.AsFloat(),
		})
	}
	endYears := start.YearsUntil(sc.r.To)
	if endYears < minPeriodYears {
		endYears = minPeriodYears
	}
	rate := moneyWeightedRate(xflows, sc.end.Value.AsFloat(), endYears)
	return Percent(100 * rate)
}

// symbolsOf returns the ordered distinct symbols of the events.
func symbolsOf(events []Event) []string {
	var symbols []string
	seen := make(map[string]struct{})
	for _, e := range events {
		if _, ok := seen[e.Holding()]; ok {
			continue
		}
		seen[e.Holding()] = struct{}{}
		symbols = append(symbols, e.Holding())
	}
	return symbols
}

// eventsOf filters the events of one symbol, preserving order.
func eventsOf(events []Event, symbol string) []Event {
	var out []Event
	for _, e := range events {
		if e.Holding() == symbol {
			out = append(out, e)
		}
	}
	return out
}
