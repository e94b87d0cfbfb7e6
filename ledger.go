package folio

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
)

// Ledger is the raw, chronologically sorted event log for one user's
// portfolio.
//
// A Ledger never derives anything: positions, lots and metrics are computed
// on demand by the engine from the events it holds.
type Ledger struct {
	events []Event
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{events: make([]Event, 0)}
}

// Len returns the number of events in the ledger.
func (l *Ledger) Len() int { return len(l.events) }

// Append adds the given events, keeping the ledger chronologically sorted.
// The whole resulting history is revalidated, so a back-dated event cannot
// retroactively orphan a later sell. The append is all-or-nothing: an invalid
// batch leaves the ledger untouched.
func (l *Ledger) Append(events ...Event) error {
	candidate := slices.Clone(l.events)
	candidate = append(candidate, events...)
	next, err := replay(candidate)
	if err != nil {
		return err
	}
	l.events = next.events
	return nil
}

// Events returns an iterator over all events in chronological order.
func (l *Ledger) Events() iter.Seq[Event] {
	return slices.Values(l.events)
}

// EventsOf returns the chronological events of a single holding.
func (l *Ledger) EventsOf(symbol string) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Holding() == symbol {
			out = append(out, e)
		}
	}
	return out
}

// Event returns the event with the given identifier, or nil if unknown.
func (l *Ledger) Event(id string) Event {
	for _, e := range l.events {
		if e.ID() != "" && e.ID() == id {
			return e
		}
	}
	return nil
}

// Replace substitutes the event with the given identifier wholesale. The
// replacement is validated against a ledger without the original event, so an
// edit cannot hide an oversell.
func (l *Ledger) Replace(id string, ev Event) error {
	i := slices.IndexFunc(l.events, func(e Event) bool { return e.ID() != "" && e.ID() == id })
	if i < 0 {
		return fmt.Errorf("no event with id %q", id)
	}
	candidate := slices.Delete(slices.Clone(l.events), i, i+1)
	candidate = append(candidate, withID(ev, id))
	next, err := replay(candidate)
	if err != nil {
		return fmt.Errorf("invalid replacement event: %w", err)
	}
	l.events = next.events
	return nil
}

// Delete removes the event with the given identifier. Like Replace, the
// remaining events are revalidated: deleting a buy that a later sell depends
// on is an error.
func (l *Ledger) Delete(id string) error {
	i := slices.IndexFunc(l.events, func(e Event) bool { return e.ID() != "" && e.ID() == id })
	if i < 0 {
		return fmt.Errorf("no event with id %q", id)
	}
	next, err := replay(slices.Delete(slices.Clone(l.events), i, i+1))
	if err != nil {
		return fmt.Errorf("deleting event %q: %w", id, err)
	}
	l.events = next.events
	return nil
}

// replay rebuilds a ledger from scratch, validating every event in
// chronological order against the state before it. The sort is stable so
// that same-day events keep their insertion order.
func replay(events []Event) (*Ledger, error) {
	next := NewLedger()
	ordered := slices.Clone(events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].When().Before(ordered[j].When())
	})
	for _, e := range ordered {
		if err := e.Validate(next); err != nil {
			return nil, fmt.Errorf("invalid event: %w", err)
		}
		next.events = append(next.events, e)
	}
	return next, nil
}

// Symbols returns the sorted set of holding symbols present in the ledger.
func (l *Ledger) Symbols() []string {
	set := make(map[string]struct{})
	for _, e := range l.events {
		set[e.Holding()] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Position returns the open quantity of a holding on a given date, counting
// buys and bonuses in, and sells out. Deposits, withdrawals and dividends
// never change a position.
func (l *Ledger) Position(symbol string, on Date) Quantity {
	var q Quantity
	for _, e := range l.events {
		if e.When().After(on) {
			// the ledger is sorted, so we can stop iterating.
			break
		}
		if e.Holding() != symbol {
			continue
		}
		switch v := e.(type) {
		case Buy:
			q = q.Add(v.Quantity)
		case Bonus:
			q = q.Add(v.Quantity)
		case Sell:
			q = q.Sub(v.Quantity)
		}
	}
	return q
}

// Oldest returns the date of the first event, or the zero date for an empty
// ledger.
func (l *Ledger) Oldest() Date {
	if len(l.events) == 0 {
		return Date{}
	}
	return l.events[0].When()
}

// Latest returns the date of the last event, or the zero date for an empty
// ledger.
func (l *Ledger) Latest() Date {
	if len(l.events) == 0 {
		return Date{}
	}
	return l.events[len(l.events)-1].When()
}
