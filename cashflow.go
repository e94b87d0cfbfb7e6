package folio

// CashFlow is one signed, dated external cash movement derived from an event.
//
// Buys and deposits are negative (cash left the owner's pocket), sells and
// withdrawals are positive. Dividends are positive but tagged as income:
// they count toward total return yet are excluded from the money-weighted
// cash-flow set.
type CashFlow struct {
	Date   Date
	Amount Money
	Income bool
}

// CashFlows extracts the signed cash-flow series from a chronological event
// list. Events without an external cash effect (bonus issues) contribute
// nothing. Pure function: the event list is never modified.
func CashFlows(events []Event) []CashFlow {
	var flows []CashFlow
	for _, e := range events {
		switch v := e.(type) {
		case Buy:
			flows = append(flows, CashFlow{Date: v.Date, Amount: v.Cash()})
		case Sell:
			flows = append(flows, CashFlow{Date: v.Date, Amount: v.Cash()})
		case Deposit:
			flows = append(flows, CashFlow{Date: v.Date, Amount: v.Cash()})
		case Withdraw:
			flows = append(flows, CashFlow{Date: v.Date, Amount: v.Cash()})
		case Dividend:
			flows = append(flows, CashFlow{Date: v.Date, Amount: v.Cash(), Income: true})
		}
	}
	return flows
}

// capitalFlows filters out income flows, keeping only the external capital
// movements used by the money-weighted and average-capital calculations.
func capitalFlows(flows []CashFlow) []CashFlow {
	var out []CashFlow
	for _, f := range flows {
		if !f.Income {
			out = append(out, f)
		}
	}
	return out
}

// netContribution sums the capital contributed over the flows: buys and
// deposits count positive, sells and withdrawals negative.
func netContribution(flows []CashFlow) Money {
	var total Money
	for _, f := range flows {
		if f.Income {
			continue
		}
		total = total.Add(f.Amount.Neg())
	}
	return total
}
