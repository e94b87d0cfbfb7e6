package folio

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDecodeEvents_DualCashEncoding(t *testing.T) {
	// An explicit amount and a quantity*price pair decode to the same
	// dividend.
	explicit := `{"kind":"dividend","date":"2024-06-01","symbol":"ACME","amount":50,"currency":"USD"}`
	derived := `{"kind":"dividend","date":"2024-06-01","symbol":"ACME","quantity":100,"price":0.5,"currency":"USD"}`

	a, err := DecodeEvents(strings.NewReader(explicit))
	if err != nil {
		t.Fatalf("DecodeEvents(explicit) error = %v", err)
	}
	b, err := DecodeEvents(strings.NewReader(derived))
	if err != nil {
		t.Fatalf("DecodeEvents(derived) error = %v", err)
	}
	da, db := a[0].(Dividend), b[0].(Dividend)
	moneyEq(t, "explicit amount", da.Amount, USD(50))
	if !da.Amount.Equal(db.Amount) {
		t.Errorf("dual encodings disagree: %s vs %s", da.Amount, db.Amount)
	}
}

func TestDecodeEvents_UnknownKind(t *testing.T) {
	_, err := DecodeEvents(strings.NewReader(`{"kind":"split","date":"2024-01-01"}`))
	if err == nil {
		t.Fatal("DecodeEvents() accepted an unknown kind")
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	l := NewLedger()
	if err := l.Append(
		NewDeposit(day(2024, time.January, 2), "funding", "SAVINGS", USD(1000)),
		NewBuy(day(2024, time.January, 10), "", "ACME", Q(100), USD(10), USD(1)),
		NewDividend(day(2024, time.June, 1), "", "ACME", USD(50)),
		NewSell(day(2024, time.June, 20), "", "ACME", Q(40), USD(15), USD(1)),
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 4 {
		t.Fatalf("encoded %d lines, want 4:\n%s", n, buf.String())
	}

	back, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	if back.Len() != l.Len() {
		t.Fatalf("round trip lost events: %d != %d", back.Len(), l.Len())
	}
	i := 0
	want := make([]Event, 0, l.Len())
	for e := range l.Events() {
		want = append(want, e)
	}
	for e := range back.Events() {
		if !e.Equal(want[i]) {
			t.Errorf("event %d changed across the round trip:\n got %+v\nwant %+v", i, e, want[i])
		}
		i++
	}
}

func TestDecodeLedger_RejectsOversell(t *testing.T) {
	in := `{"kind":"buy","date":"2024-01-10","symbol":"ACME","quantity":10,"price":10,"currency":"USD"}
{"kind":"sell","date":"2024-02-01","symbol":"ACME","quantity":20,"price":12,"currency":"USD"}`
	if _, err := DecodeLedger(strings.NewReader(in)); err == nil {
		t.Fatal("DecodeLedger() accepted an overselling stream")
	}
}

func TestDecodeValuations(t *testing.T) {
	in := `{"date":"2024-01-31","value":1100,"cost":1000,"currency":"USD"}
{"date":"2024-02-29","value":1250,"cost":1000,"currency":"USD"}
{"symbol":"ACME","date":"2024-01-31","value":700,"cost":600,"currency":"USD"}

{"symbol":"ACME","date":"2024-02-29","value":800,"cost":600,"currency":"USD"}`
	src, err := DecodeValuations(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeValuations() error = %v", err)
	}
	if src.Portfolio.Len() != 2 {
		t.Errorf("portfolio series has %d points, want 2", src.Portfolio.Len())
	}
	s, err := src.SymbolSeries("ACME", "USD")
	if err != nil {
		t.Fatalf("SymbolSeries(ACME) error = %v", err)
	}
	p, ok := s.AsOf(day(2024, time.March, 15))
	if !ok {
		t.Fatal("AsOf after the last point found nothing")
	}
	moneyEq(t, "ACME value", p.Value, USD(800))
	if _, err := src.SymbolSeries("NOPE", "USD"); err == nil {
		t.Error("SymbolSeries(NOPE) did not fail")
	}
}
