package folio

import (
	"fmt"
)

// Lot represents a discrete, cost-tracked slice of an open position, created
// by a buy or a bonus and consumed by sells in FIFO order.
type Lot struct {
	Symbol   string
	Date     Date     // acquisition date
	Quantity Quantity // open quantity remaining in the lot
	Cost     Money    // total cost of the open quantity, fees amortized
}

// UnitCost returns the per-unit cost of the lot.
func (l Lot) UnitCost() Money {
	if l.Quantity.IsZero() {
		return Money{cur: l.Cost.Currency()}
	}
	return l.Cost.Div(l.Quantity)
}

// LotMatch records the slice of a lot consumed by one sale.
type LotMatch struct {
	Acquired Date     // acquisition date of the matched lot
	Quantity Quantity // quantity consumed from the lot
	Cost     Money    // cost basis of the consumed slice
}

// Sale is the realized-gain record for a single sell event: the matched lots,
// net proceeds, fee, and the resulting gain.
type Sale struct {
	Symbol   string
	Date     Date
	Quantity Quantity
	Proceeds Money // net proceeds, fee deducted
	Fee      Money
	Cost     Money // FIFO cost basis of the sold quantity
	Matches  []LotMatch
}

// Gain returns the realized gain of the sale: net proceeds minus the FIFO
// cost of the shares sold.
func (s Sale) Gain() Money { return s.Proceeds.Sub(s.Cost) }

// lotQueue is the FIFO queue of open lots for one holding. It is built fresh
// for every computation, never shared or kept across calls.
type lotQueue []Lot

// push appends a new lot to the tail of the queue.
func (q lotQueue) push(l Lot) lotQueue { return append(q, l) }

// consume draws down the queue head by the sold quantity and returns the
// matched slices. Selling more than is open is a data-integrity error, never
// capped.
func (q lotQueue) consume(symbol string, on Date, quantity Quantity) (lotQueue, []LotMatch, error) {
	var matches []LotMatch
	remaining := quantity
	for len(q) > 0 && remaining.IsPositive() {
		head := q[0]
		if head.Quantity.GreaterThan(remaining) {
			// Partial consumption of the head lot.
			cost := head.Cost.Mul(remaining).Div(head.Quantity)
			matches = append(matches, LotMatch{Acquired: head.Date, Quantity: remaining, Cost: cost})
			q[0].Quantity = head.Quantity.Sub(remaining)
			q[0].Cost = head.Cost.Sub(cost)
			remaining = Quantity{}
			break
		}
		// Full consumption removes the lot from the queue.
		matches = append(matches, LotMatch{Acquired: head.Date, Quantity: head.Quantity, Cost: head.Cost})
		remaining = remaining.Sub(head.Quantity)
		q = q[1:]
	}
	if remaining.IsPositive() {
		return q, nil, fmt.Errorf("sell %s of %s on %s: %w", quantity, symbol, on, ErrOversell)
	}
	return q, matches, nil
}

// BuildLots replays one holding's chronological events through a fresh FIFO
// queue, returning the currently open lots and one realized-gain record per
// sell. Dividends, deposits and withdrawals never touch the queue.
func BuildLots(events []Event) ([]Lot, []Sale, error) {
	var queue lotQueue
	var sales []Sale
	for _, e := range events {
		switch v := e.(type) {
		case Buy:
			queue = queue.push(Lot{
				Symbol:   v.Symbol,
				Date:     v.Date,
				Quantity: v.Quantity,
				Cost:     v.Cost(),
			})
		case Bonus:
			// Zero cost, except for an amortized fee if any.
			queue = queue.push(Lot{
				Symbol:   v.Symbol,
				Date:     v.Date,
				Quantity: v.Quantity,
				Cost:     v.Fee,
			})
		case Sell:
			rest, matches, err := queue.consume(v.Symbol, v.Date, v.Quantity)
			if err != nil {
				return nil, nil, err
			}
			queue = rest
			var cost Money
			for _, m := range matches {
				cost = cost.Add(m.Cost)
			}
			sales = append(sales, Sale{
				Symbol:   v.Symbol,
				Date:     v.Date,
				Quantity: v.Quantity,
				Proceeds: v.Proceeds(),
				Fee:      v.Fee,
				Cost:     cost,
				Matches:  matches,
			})
		}
	}
	open := make([]Lot, len(queue))
	copy(open, queue)
	return open, sales, nil
}

// CostBasis returns the total cost of a slice of open lots.
func CostBasis(lots []Lot) Money {
	var total Money
	for _, l := range lots {
		total = total.Add(l.Cost)
	}
	return total
}

// OpenQuantity returns the total open quantity of a slice of lots.
func OpenQuantity(lots []Lot) Quantity {
	var total Quantity
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}
