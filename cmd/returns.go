package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/folioscope/folio"
	"github.com/google/subcommands"
)

// returnsCmd holds the flags for the 'returns' subcommand.
type returnsCmd struct {
	symbol     string
	start      string
	end        string
	period     string
	currency   string
	ledgerFile string
	valFile    string
}

func (*returnsCmd) Name() string     { return "returns" }
func (*returnsCmd) Synopsis() string { return "return and income analysis over a period" }
func (*returnsCmd) Usage() string {
	return `folc returns [-sym <symbol>] [-period <period>] [-s <date>] [-d <date>] [-c <currency>]

  Computes realized/unrealized gains, dividend income, and annualized
  time-weighted and money-weighted returns over the requested period.
  Without -sym, the whole portfolio is analyzed.

Usage Examples:
# Year-to-date portfolio returns.
$ folc returns -period year

# Lifetime returns for one holding.
$ folc returns -sym ACME

`
}

func (c *returnsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "sym", "", "Holding symbol. Analyzes the whole portfolio by default.")
	f.StringVar(&c.period, "period", "inception", "Predefined period (day, week, month, quarter, year, inception)")
	f.StringVar(&c.start, "s", "", "Start date of the reporting period (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", folio.Today().String(), "End date of the reporting period (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "USD", "Reporting currency")
	f.StringVar(&c.ledgerFile, "l", "events.jsonl", "Ledger file (JSONL)")
	f.StringVar(&c.valFile, "v", "valuations.jsonl", "Valuations file (JSONL)")
}

func (c *returnsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := parseRange(c.start, c.end, c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ledger, err := decodeLedgerFile(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	valuations, err := decodeValuationsFile(c.valFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	calc, err := folio.NewCalculator(ledger, valuations, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var m *folio.ReturnMetrics
	scope := "Portfolio"
	if c.symbol != "" {
		res, err := calc.Symbol(c.symbol, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		m = res.Metrics
		scope = c.symbol
	} else {
		res, err := calc.Portfolio(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		m = res.Metrics
	}

	fmt.Printf("%s returns %s\n\n", scope, r)
	fmt.Printf("  Invested:       %s\n", m.TotalInvested)
	fmt.Printf("  Withdrawn:      %s\n", m.TotalWithdrawn)
	fmt.Printf("  Cost Basis:     %s\n", m.CostBasis)
	fmt.Printf("  Current Value:  %s\n", m.CurrentValue)
	fmt.Printf("  Realized P&L:   %s\n", m.RealizedPnL.SignedString())
	fmt.Printf("  Unrealized P&L: %s\n", m.UnrealizedPnL.SignedString())
	fmt.Printf("  Dividends:      %s (yield %s/yr)\n", m.Dividends.Total, m.Dividends.AnnualizedYield)
	fmt.Printf("  Total P&L:      %s (%s)\n", m.TotalPnL.SignedString(), m.TotalReturn.SignedString())
	fmt.Printf("  TWR:            %s/yr\n", m.TimeWeightedReturn.SignedString())
	fmt.Printf("  MWR:            %s/yr\n", m.MoneyWeightedReturn.SignedString())
	return subcommands.ExitSuccess
}
