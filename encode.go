package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// cashAttrs is a specialized struct to read the dual cash encoding used by
// dividends, deposits and withdrawals: either an explicit amount, or
// quantity multiplied by a unit price. The Money method resolves it once, at
// decode time.
type cashAttrs struct {
	Amount   decimal.Decimal `json:"amount"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Currency string          `json:"currency"`
}

func (a cashAttrs) Money() Money {
	if !a.Amount.IsZero() {
		return M(a.Amount, a.Currency)
	}
	return M(a.Price.Mul(a.Quantity), a.Currency)
}

// tradeAttrs is a specialized struct for decoding buy and sell lines.
type tradeAttrs struct {
	secEvent
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
}

// DecodeEvents decodes events from a stream of JSONL data, one JSON object
// per line, identified by their "kind" field.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // skip empty lines
		}

		var identifier struct {
			Kind EventKind `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify event kind in line %q: %w", string(line), err)
		}

		var decoded Event
		switch identifier.Kind {
		case KindBuy:
			var t tradeAttrs
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Buy{secEvent: t.secEvent, Quantity: t.Quantity,
				Price: M(t.Price, t.Currency), Fee: M(t.Fee, t.Currency)}
		case KindSell:
			var t tradeAttrs
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Sell{secEvent: t.secEvent, Quantity: t.Quantity,
				Price: M(t.Price, t.Currency), Fee: M(t.Fee, t.Currency)}
		case KindBonus:
			var t struct {
				secEvent
				Quantity Quantity        `json:"quantity"`
				Fee      decimal.Decimal `json:"fee"`
				Currency string          `json:"currency"`
			}
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Bonus{secEvent: t.secEvent, Quantity: t.Quantity, Fee: M(t.Fee, t.Currency)}
		case KindDividend:
			var t struct {
				secEvent
				cashAttrs
			}
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Dividend{secEvent: t.secEvent, Amount: t.Money()}
		case KindDeposit:
			var t struct {
				secEvent
				cashAttrs
			}
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Deposit{secEvent: t.secEvent, Amount: t.Money()}
		case KindWithdraw:
			var t struct {
				secEvent
				cashAttrs
			}
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, err
			}
			decoded = Withdraw{secEvent: t.secEvent, Amount: t.Money()}
		default:
			return nil, fmt.Errorf("unknown event kind %q in line %q", identifier.Kind, string(line))
		}
		events = append(events, decoded)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}

// DecodeLedger decodes a JSONL event stream into a validated, sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	events, err := DecodeEvents(r)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger()
	if err := ledger.Append(events...); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeLedger writes the ledger to the writer in canonical JSONL form, one
// event per line in chronological order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for e := range l.Events() {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding event on %s: %w", e.When(), err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// valuationLine is the JSONL form of a valuation point, optionally tagged
// with a symbol. Lines without a symbol belong to the whole-portfolio series.
type valuationLine struct {
	Symbol   string          `json:"symbol,omitempty"`
	Date     Date            `json:"date"`
	Value    decimal.Decimal `json:"value"`
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency,omitempty"`
}

// DecodeValuations decodes a JSONL valuation stream into a static valuation
// source.
func DecodeValuations(r io.Reader) (*StaticValuations, error) {
	src := NewStaticValuations()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var v valuationLine
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("could not decode valuation line %q: %w", string(line), err)
		}
		p := ValuationPoint{Date: v.Date, Value: M(v.Value, v.Currency), Cost: M(v.Cost, v.Currency)}
		if v.Symbol == "" {
			src.Portfolio.Append(p)
			continue
		}
		s, ok := src.Symbols[v.Symbol]
		if !ok {
			s = NewValuationSeries()
			src.Symbols[v.Symbol] = s
		}
		s.Append(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading valuations: %w", err)
	}
	return src, nil
}
