package folio

import (
	"errors"
	"fmt"
)

// EventKind is a typed string identifying the kind of a portfolio event.
type EventKind string

// Event kinds recorded in a ledger.
const (
	KindBuy      EventKind = "buy"
	KindSell     EventKind = "sell"
	KindDividend EventKind = "dividend"
	KindBonus    EventKind = "bonus"
	KindDeposit  EventKind = "deposit"
	KindWithdraw EventKind = "withdrawal"
)

// Event defines the common interface for all portfolio events recorded in a
// ledger. Events are immutable values: an edit replaces the event wholesale.
type Event interface {
	// ID returns the store-assigned identifier, empty until appended.
	ID() string
	// What returns the kind of the event (e.g. "buy", "sell").
	What() EventKind
	// When returns the date on which the event occurred.
	When() Date
	// Holding returns the symbol the event applies to.
	Holding() string
	Equal(Event) bool
	Validate(l *Ledger) error
}

// Sentinel errors for data-integrity violations. They indicate a corrupted
// event log and are never silently repaired.
var (
	ErrOversell     = errors.New("sell exceeds open quantity")
	ErrZeroQuantity = errors.New("quantity must be positive")
	ErrBadAmount    = errors.New("amount must be positive")
)

type baseEvent struct {
	Id   string    `json:"id,omitempty"`   // Id is assigned by the event store on append.
	Kind EventKind `json:"kind"`           // Kind specifies the type of event.
	Date Date      `json:"date"`           // Date is the day the event took place.
	Note string    `json:"note,omitempty"` // Note provides an optional rationale for the event.
}

func (e baseEvent) ID() string      { return e.Id }
func (e baseEvent) What() EventKind { return e.Kind }
func (e baseEvent) When() Date      { return e.Date }

func (e baseEvent) validate() error {
	if e.Date.IsZero() {
		return errors.New("event date is missing")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for baseEvent.
func (e baseEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Append("date", e.Date)
	w.Optional("id", e.Id)
	w.Optional("note", e.Note)
	return w.MarshalJSON()
}

// secEvent is a component for events tied to a holding symbol.
type secEvent struct {
	baseEvent
	Symbol string `json:"symbol"` // Symbol is the ticker of the holding involved.
}

func (e secEvent) Holding() string { return e.Symbol }

func (e secEvent) validate() error {
	if err := e.baseEvent.validate(); err != nil {
		return err
	}
	if e.Symbol == "" {
		return errors.New("holding symbol is missing")
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for secEvent.
func (e secEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseEvent)
	w.Append("symbol", e.Symbol)
	return w.MarshalJSON()
}

// Buy represents the purchase of a quantity of a holding at a unit price,
// plus a transaction fee.
type Buy struct {
	secEvent
	Quantity Quantity // Quantity is the number of units bought.
	Price    Money    // Price is the unit price paid.
	Fee      Money    // Fee is the total transaction fee for the purchase.
}

// NewBuy creates a new Buy event.
func NewBuy(day Date, note, symbol string, quantity Quantity, price, fee Money) Buy {
	return Buy{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindBuy, Date: day, Note: note}, Symbol: symbol},
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
	}
}

// Cost returns the total cost of the purchase, fee included.
func (t Buy) Cost() Money { return t.Price.Mul(t.Quantity).Add(t.Fee) }

// Cash returns the signed external cash effect of the purchase.
func (t Buy) Cash() Money { return t.Cost().Neg() }

func (t Buy) Equal(other Event) bool {
	o, ok := other.(Buy)
	return ok && t.secEvent == o.secEvent && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Fee.Equal(o.Fee)
}

func (t Buy) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("buy %s on %s: %w", t.Symbol, t.Date, ErrZeroQuantity)
	}
	if t.Price.IsNegative() || t.Fee.IsNegative() {
		return fmt.Errorf("buy %s on %s: price and fee must not be negative", t.Symbol, t.Date)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Buy.
func (t Buy) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Optional("fee", t.Fee.Decimal())
	w.Optional("currency", t.Price.Currency())
	return w.MarshalJSON()
}

// Sell represents the sale of a quantity of a holding at a unit price,
// minus a transaction fee.
type Sell struct {
	secEvent
	Quantity Quantity // Quantity is the number of units sold.
	Price    Money    // Price is the unit price received.
	Fee      Money    // Fee is the total transaction fee for the sale.
}

// NewSell creates a new Sell event.
func NewSell(day Date, note, symbol string, quantity Quantity, price, fee Money) Sell {
	return Sell{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindSell, Date: day, Note: note}, Symbol: symbol},
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
	}
}

// Proceeds returns the net sale proceeds, fee deducted.
func (t Sell) Proceeds() Money { return t.Price.Mul(t.Quantity).Sub(t.Fee) }

// Cash returns the signed external cash effect of the sale.
func (t Sell) Cash() Money { return t.Proceeds() }

func (t Sell) Equal(other Event) bool {
	o, ok := other.(Sell)
	return ok && t.secEvent == o.secEvent && t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) && t.Fee.Equal(o.Fee)
}

// Validate checks the sale against the ledger state at its date: selling more
// than the cumulative open quantity is a data-integrity error, not clamped.
func (t Sell) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("sell %s on %s: %w", t.Symbol, t.Date, ErrZeroQuantity)
	}
	if t.Price.IsNegative() || t.Fee.IsNegative() {
		return fmt.Errorf("sell %s on %s: price and fee must not be negative", t.Symbol, t.Date)
	}
	if l != nil {
		open := l.Position(t.Symbol, t.Date)
		if t.Quantity.GreaterThan(open) {
			return fmt.Errorf("sell %s of %s on %s with only %s open: %w",
				t.Quantity, t.Symbol, t.Date, open, ErrOversell)
		}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Sell.
func (t Sell) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Optional("fee", t.Fee.Decimal())
	w.Optional("currency", t.Price.Currency())
	return w.MarshalJSON()
}

// Dividend represents cash income received from a holding. It never affects
// the lot queue or the cost basis.
type Dividend struct {
	secEvent
	Amount Money // Amount is the total cash received.
}

// NewDividend creates a new Dividend event from an explicit cash amount.
func NewDividend(day Date, note, symbol string, amount Money) Dividend {
	return Dividend{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindDividend, Date: day, Note: note}, Symbol: symbol},
		Amount:   amount,
	}
}

// NewDividendPerShare creates a Dividend from a per-share amount and a share
// count. The cash amount is resolved here, once, so downstream code never
// branches on the encoding.
func NewDividendPerShare(day Date, note, symbol string, perShare Money, quantity Quantity) Dividend {
	return NewDividend(day, note, symbol, perShare.Mul(quantity))
}

// Cash returns the signed external cash effect of the dividend.
func (t Dividend) Cash() Money { return t.Amount }

func (t Dividend) Equal(other Event) bool {
	o, ok := other.(Dividend)
	return ok && t.secEvent == o.secEvent && t.Amount.Equal(o.Amount)
}

func (t Dividend) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("dividend %s on %s: %w", t.Symbol, t.Date, ErrBadAmount)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Dividend.
func (t Dividend) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("amount", t.Amount.Decimal())
	w.Optional("currency", t.Amount.Currency())
	return w.MarshalJSON()
}

// Bonus represents shares granted at no cost (bonus issue, scrip dividend).
// The lot it opens has a zero unit cost, so its entire later mark-to-market
// value is unrealized capital gain, never dividend income.
type Bonus struct {
	secEvent
	Quantity Quantity // Quantity is the number of units granted.
	Fee      Money    // Fee, if any, is amortized into the lot cost.
}

// NewBonus creates a new Bonus event.
func NewBonus(day Date, note, symbol string, quantity Quantity, fee Money) Bonus {
	return Bonus{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindBonus, Date: day, Note: note}, Symbol: symbol},
		Quantity: quantity,
		Fee:      fee,
	}
}

func (t Bonus) Equal(other Event) bool {
	o, ok := other.(Bonus)
	return ok && t.secEvent == o.secEvent && t.Quantity.Equal(o.Quantity) && t.Fee.Equal(o.Fee)
}

func (t Bonus) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("bonus %s on %s: %w", t.Symbol, t.Date, ErrZeroQuantity)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("bonus %s on %s: fee must not be negative", t.Symbol, t.Date)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Bonus.
func (t Bonus) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("quantity", t.Quantity)
	w.Optional("fee", t.Fee.Decimal())
	w.Optional("currency", t.Fee.Currency())
	return w.MarshalJSON()
}

// Deposit represents external cash moved into an aggregate account holding.
// Account holdings track balance snapshots directly; deposits never touch
// the lot queue.
type Deposit struct {
	secEvent
	Amount Money // Amount is the cash moved in.
}

// NewDeposit creates a new Deposit event.
func NewDeposit(day Date, note, symbol string, amount Money) Deposit {
	return Deposit{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindDeposit, Date: day, Note: note}, Symbol: symbol},
		Amount:   amount,
	}
}

// Cash returns the signed external cash effect of the deposit.
func (t Deposit) Cash() Money { return t.Amount.Neg() }

func (t Deposit) Equal(other Event) bool {
	o, ok := other.(Deposit)
	return ok && t.secEvent == o.secEvent && t.Amount.Equal(o.Amount)
}

func (t Deposit) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("deposit %s on %s: %w", t.Symbol, t.Date, ErrBadAmount)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Deposit.
func (t Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("amount", t.Amount.Decimal())
	w.Optional("currency", t.Amount.Currency())
	return w.MarshalJSON()
}

// Withdraw represents external cash moved out of an aggregate account holding.
type Withdraw struct {
	secEvent
	Amount Money // Amount is the cash moved out.
}

// NewWithdraw creates a new Withdraw event.
func NewWithdraw(day Date, note, symbol string, amount Money) Withdraw {
	return Withdraw{
		secEvent: secEvent{baseEvent: baseEvent{Kind: KindWithdraw, Date: day, Note: note}, Symbol: symbol},
		Amount:   amount,
	}
}

// Cash returns the signed external cash effect of the withdrawal.
func (t Withdraw) Cash() Money { return t.Amount }

func (t Withdraw) Equal(other Event) bool {
	o, ok := other.(Withdraw)
	return ok && t.secEvent == o.secEvent && t.Amount.Equal(o.Amount)
}

func (t Withdraw) Validate(l *Ledger) error {
	if err := t.secEvent.validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("withdrawal %s on %s: %w", t.Symbol, t.Date, ErrBadAmount)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Withdraw.
func (t Withdraw) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.secEvent)
	w.Append("amount", t.Amount.Decimal())
	w.Optional("currency", t.Amount.Currency())
	return w.MarshalJSON()
}

// withID returns a copy of the event carrying the given identifier.
// Identifiers are owned by the event store.
func withID(e Event, id string) Event {
	switch v := e.(type) {
	case Buy:
		v.Id = id
		return v
	case Sell:
		v.Id = id
		return v
	case Dividend:
		v.Id = id
		return v
	case Bonus:
		v.Id = id
		return v
	case Deposit:
		v.Id = id
		return v
	case Withdraw:
		v.Id = id
		return v
	default:
		return e
	}
}
