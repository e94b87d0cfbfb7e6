package folio

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		err  bool
	}{
		{"2024-01-15", day(2024, time.January, 15), false},
		{"2024-1-5", day(2024, time.January, 5), false},
		{" 2024-06-30 ", day(2024, time.June, 30), false},
		{"15/01/2024", Date{}, true},
		{"not a date", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDate_Normalization(t *testing.T) {
	// Out-of-range components roll over, like time.Date.
	if got := NewDate(2024, time.January, 32); got != day(2024, time.February, 1) {
		t.Errorf("NewDate(2024, jan, 32) = %s", got)
	}
	if got := day(2024, time.February, 28).Add(2); got != day(2024, time.March, 1) {
		t.Errorf("leap-year Add = %s", got)
	}
}

func TestDate_SubAndYears(t *testing.T) {
	a := day(2024, time.January, 1)
	b := day(2024, time.December, 31)
	if got := b.Sub(a); got != 365 {
		t.Errorf("Sub = %d, want 365 (2024 is a leap year)", got)
	}
	if got := a.YearsUntil(b); got < 0.99 || got > 1.01 {
		t.Errorf("YearsUntil = %f, want ~1", got)
	}
	if got := a.YearsUntil(a); got != 0 {
		t.Errorf("YearsUntil(self) = %f, want 0", got)
	}
}

func TestDate_PeriodBounds(t *testing.T) {
	d := day(2024, time.February, 14) // a Wednesday
	tests := []struct {
		period     Period
		start, end Date
	}{
		{Daily, d, d},
		{Weekly, day(2024, time.February, 12), day(2024, time.February, 18)},
		{Monthly, day(2024, time.February, 1), day(2024, time.February, 29)},
		{Quarterly, day(2024, time.January, 1), day(2024, time.March, 31)},
		{Yearly, day(2024, time.January, 1), day(2024, time.December, 31)},
	}
	for _, tt := range tests {
		if got := d.StartOf(tt.period); got != tt.start {
			t.Errorf("StartOf(%s) = %s, want %s", tt.period, got, tt.start)
		}
		if got := d.EndOf(tt.period); got != tt.end {
			t.Errorf("EndOf(%s) = %s, want %s", tt.period, got, tt.end)
		}
	}
}

func TestRange(t *testing.T) {
	r := NewRange(day(2024, time.February, 1), day(2024, time.February, 29))
	if !r.Bounded() {
		t.Error("Bounded() = false for a bounded range")
	}
	if r.Contains(day(2024, time.January, 31)) {
		t.Error("Contains(day before From) = true")
	}
	if !r.Contains(day(2024, time.February, 1)) || !r.Contains(day(2024, time.February, 29)) {
		t.Error("range bounds are inclusive")
	}
	if r.Contains(day(2024, time.March, 1)) {
		t.Error("Contains(day after To) = true")
	}

	open := SinceInception(day(2024, time.February, 29))
	if open.Bounded() {
		t.Error("Bounded() = true for an open-start range")
	}
	if !open.Contains(day(1990, time.January, 1)) {
		t.Error("open-start range excludes an early date")
	}
	if open.Contains(day(2024, time.March, 1)) {
		t.Error("open-start range includes a date after To")
	}
}
