package folio

import (
	"fmt"
)

// Calculator combines the event log with the external valuation collaborator
// to answer scoped return queries. It holds no derived state: every call is a
// fresh reduction over its inputs, safe for concurrent use.
type Calculator struct {
	Ledger     *Ledger
	Valuations ValuationSource
	Currency   string
}

// NewCalculator creates a calculator for a ledger, a valuation source and a
// target currency. All inputs are assumed to share that currency; conversion
// belongs to an external collaborator.
func NewCalculator(ledger *Ledger, valuations ValuationSource, currency string) (*Calculator, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if valuations == nil {
		return nil, fmt.Errorf("valuation source is required")
	}
	return &Calculator{Ledger: ledger, Valuations: valuations, Currency: currency}, nil
}

// SymbolReturns is the result of a symbol-scoped return calculation.
type SymbolReturns struct {
	Symbol  string
	Metrics *ReturnMetrics
	Open    []Lot  // currently open lots, FIFO order
	Sales   []Sale // realized-gain records within the range
}

// PortfolioReturns is the result of a whole-portfolio return calculation.
type PortfolioReturns struct {
	Metrics  *ReturnMetrics
	BySymbol map[string]*SymbolReturns
}

// AccountReturns is the result for an aggregate account holding. Account
// holdings store balance snapshots directly; quantity and unit price are
// derived only for display.
type AccountReturns struct {
	Account string
	Metrics *ReturnMetrics
	Balance Money // balance at range end
}

// Symbol computes the return metrics for one holding over the range.
func (c *Calculator) Symbol(symbol string, r Range) (*SymbolReturns, error) {
	events := c.Ledger.EventsOf(symbol)
	series, err := c.Valuations.SymbolSeries(symbol, c.Currency)
	if err != nil {
		// Insufficient data is not an error: report all-zero metrics.
		series = NewValuationSeries()
	}
	metrics, err := Calculate(events, series, r, c.Currency)
	if err != nil {
		return nil, err
	}
	res := &SymbolReturns{Symbol: symbol, Metrics: metrics}
	var all []Event
	for _, e := range events {
		if !e.When().After(r.To) {
			all = append(all, e)
		}
	}
	open, sales, err := BuildLots(all)
	if err != nil {
		return nil, fmt.Errorf("replaying %s: %w", symbol, err)
	}
	res.Open = open
	for _, s := range sales {
		if r.Contains(s.Date) {
			res.Sales = append(res.Sales, s)
		}
	}
	return res, nil
}

// Portfolio computes the return metrics for the whole portfolio over the
// range, with a per-symbol breakdown for every holding that has a valuation
// series.
func (c *Calculator) Portfolio(r Range) (*PortfolioReturns, error) {
	series, err := c.Valuations.PortfolioSeries(c.Currency)
	if err != nil {
		return nil, fmt.Errorf("portfolio valuations: %w", err)
	}
	var events []Event
	for e := range c.Ledger.Events() {
		events = append(events, e)
	}
	metrics, err := Calculate(events, series, r, c.Currency)
	if err != nil {
		return nil, err
	}
	res := &PortfolioReturns{Metrics: metrics, BySymbol: make(map[string]*SymbolReturns)}
	for _, symbol := range c.Ledger.Symbols() {
		sr, err := c.Symbol(symbol, r)
		if err != nil {
			return nil, err
		}
		res.BySymbol[symbol] = sr
	}
	return res, nil
}

// Account computes the return metrics for an aggregate account holding.
func (c *Calculator) Account(account string, r Range) (*AccountReturns, error) {
	sr, err := c.Symbol(account, r)
	if err != nil {
		return nil, err
	}
	return &AccountReturns{
		Account: account,
		Metrics: sr.Metrics,
		Balance: sr.Metrics.CurrentValue,
	}, nil
}

// UnitPrice derives a display price-per-unit for an aggregate account
// holding. A zero quantity is a data-integrity error, not a zero price.
func UnitPrice(balance Money, quantity Quantity) (Money, error) {
	if quantity.IsZero() {
		return Money{}, ErrNoQuantity
	}
	return balance.Div(quantity), nil
}
