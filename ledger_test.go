package folio

import (
	"errors"
	"testing"
	"time"
)

func TestLedger_AppendSorts(t *testing.T) {
	l := NewLedger()
	err := l.Append(
		NewBuy(day(2024, time.March, 1), "", "ACME", Q(10), USD(10), USD(0)),
		NewDeposit(day(2024, time.January, 2), "", "SAVINGS", USD(1000)),
		NewBuy(day(2024, time.February, 1), "", "ACME", Q(5), USD(11), USD(0)),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	var dates []Date
	for e := range l.Events() {
		dates = append(dates, e.When())
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			t.Fatalf("events out of order: %v", dates)
		}
	}
	if l.Oldest() != day(2024, time.January, 2) {
		t.Errorf("Oldest() = %s", l.Oldest())
	}
	if l.Latest() != day(2024, time.March, 1) {
		t.Errorf("Latest() = %s", l.Latest())
	}
}

func TestLedger_AppendRejectsOversell(t *testing.T) {
	l := NewLedger()
	if err := l.Append(NewBuy(day(2024, time.January, 2), "", "ACME", Q(10), USD(10), USD(0))); err != nil {
		t.Fatalf("Append(buy) error = %v", err)
	}

	err := l.Append(NewSell(day(2024, time.February, 1), "", "ACME", Q(20), USD(12), USD(0)))
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("Append(oversell) error = %v, want ErrOversell", err)
	}
	if l.Len() != 1 {
		t.Errorf("rejected event was kept, Len() = %d", l.Len())
	}

	// A sell dated before the buy finds no position either.
	err = l.Append(NewSell(day(2023, time.December, 1), "", "ACME", Q(5), USD(12), USD(0)))
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("Append(sell before buy) error = %v, want ErrOversell", err)
	}
}

func TestLedger_AppendRejectsBackdatedOversell(t *testing.T) {
	l := NewLedger()
	if err := l.Append(
		NewBuy(day(2024, time.January, 10), "", "ACME", Q(10), USD(10), USD(0)),
		NewSell(day(2024, time.February, 1), "", "ACME", Q(10), USD(12), USD(0)),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// A back-dated sell valid at its own date would still leave the
	// February sell without enough shares. The whole history is
	// revalidated, so the append fails and nothing is stored.
	err := l.Append(NewSell(day(2024, time.January, 15), "", "ACME", Q(5), USD(11), USD(0)))
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("Append(back-dated sell) error = %v, want ErrOversell", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d after rejected append, want 2", l.Len())
	}

	// The stored log still replays cleanly through the FIFO engine.
	var events []Event
	for e := range l.Events() {
		events = append(events, e)
	}
	if _, _, err := BuildLots(events); err != nil {
		t.Fatalf("stored log does not replay: %v", err)
	}

	// A back-dated buy only adds shares and is accepted.
	if err := l.Append(NewBuy(day(2024, time.January, 5), "", "ACME", Q(3), USD(9), USD(0))); err != nil {
		t.Fatalf("Append(back-dated buy) error = %v", err)
	}
	if l.Oldest() != day(2024, time.January, 5) {
		t.Errorf("Oldest() = %s, want 2024-01-05", l.Oldest())
	}
}

func TestLedger_Position(t *testing.T) {
	l := NewLedger()
	if err := l.Append(
		NewBuy(day(2024, time.January, 2), "", "ACME", Q(100), USD(10), USD(0)),
		NewBonus(day(2024, time.February, 1), "", "ACME", Q(10), NO(0)),
		NewSell(day(2024, time.March, 1), "", "ACME", Q(40), USD(12), USD(0)),
		NewDividend(day(2024, time.March, 15), "", "ACME", USD(20)),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	tests := []struct {
		on   Date
		want Quantity
	}{
		{day(2024, time.January, 1), Q(0)},
		{day(2024, time.January, 2), Q(100)},
		{day(2024, time.February, 15), Q(110)},
		{day(2024, time.March, 1), Q(70)},
		{day(2024, time.December, 31), Q(70)},
	}
	for _, tt := range tests {
		if got := l.Position("ACME", tt.on); !got.Equal(tt.want) {
			t.Errorf("Position(ACME, %s) = %s, want %s", tt.on, got, tt.want)
		}
	}
}

func TestLedger_ReplaceAndDelete(t *testing.T) {
	l := NewLedger()
	buy := withID(NewBuy(day(2024, time.January, 2), "", "ACME", Q(10), USD(10), USD(0)), "a")
	sell := withID(NewSell(day(2024, time.February, 1), "", "ACME", Q(10), USD(12), USD(0)), "b")
	if err := l.Append(buy, sell); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Shrinking the buy would orphan the sell: the replacement is validated
	// against the ledger without the original event.
	err := l.Replace("a", NewBuy(day(2024, time.January, 2), "", "ACME", Q(5), USD(10), USD(0)))
	if !errors.Is(err, ErrOversell) {
		t.Fatalf("Replace() error = %v, want ErrOversell", err)
	}

	// Growing it is fine, and the replacement keeps the identifier.
	if err := l.Replace("a", NewBuy(day(2024, time.January, 2), "", "ACME", Q(20), USD(10), USD(0))); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	got := l.Event("a")
	if got == nil {
		t.Fatal("Event(a) = nil after replace")
	}
	if b, ok := got.(Buy); !ok || !b.Quantity.Equal(Q(20)) {
		t.Errorf("Event(a) = %+v, want the replacement buy", got)
	}

	if err := l.Delete("b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if l.Event("b") != nil {
		t.Error("Event(b) still present after delete")
	}
	if err := l.Delete("b"); err == nil {
		t.Error("Delete() of unknown id did not fail")
	}
}

func TestLedger_Symbols(t *testing.T) {
	l := NewLedger()
	if err := l.Append(
		NewBuy(day(2024, time.January, 2), "", "ZETA", Q(1), USD(10), USD(0)),
		NewDeposit(day(2024, time.January, 3), "", "SAVINGS", USD(100)),
		NewBuy(day(2024, time.January, 4), "", "ACME", Q(1), USD(10), USD(0)),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	got := l.Symbols()
	want := []string{"ACME", "SAVINGS", "ZETA"}
	if len(got) != len(want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", got, want)
		}
	}
}
