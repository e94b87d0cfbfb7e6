package folio

import "iter"

// Range represents an inclusive range of dates.
//
// A Range with a zero From is open at the start and means "since inception".
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if !from.IsZero() && from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// SinceInception returns an open-start range ending on 'to'.
func SinceInception(to Date) Range { return Range{To: to} }

// Bounded reports whether the range has an explicit start date.
func (r Range) Bounded() bool { return !r.From.IsZero() }

// Contains returns true if the date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool {
	if date.After(r.To) {
		return false
	}
	return !r.Bounded() || !date.Before(r.From)
}

// Days returns an iterator that yields each date within the range, inclusive.
// The range must be bounded.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Years returns the length of the range in fractional years.
// An open-start range has no defined length and returns 0.
func (r Range) Years() float64 {
	if !r.Bounded() {
		return 0
	}
	return r.From.YearsUntil(r.To)
}

func (r Range) String() string {
	if !r.Bounded() {
		return "inception.." + r.To.String()
	}
	return r.From.String() + ".." + r.To.String()
}
