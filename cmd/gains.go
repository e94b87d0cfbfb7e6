package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/folioscope/folio"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	start      string
	end        string
	period     string
	currency   string
	ledgerFile string
	valFile    string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized and unrealized gain analysis per holding" }
func (*gainsCmd) Usage() string {
	return `folc gains [-period <period>] [-s <date>] [-d <date>] [-c <currency>]

  Calculates and displays realized and unrealized gains for each holding.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "inception", "Predefined period (day, week, month, quarter, year, inception)")
	f.StringVar(&c.start, "s", "", "Start date of the reporting period (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", folio.Today().String(), "End date of the reporting period (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "USD", "Reporting currency")
	f.StringVar(&c.ledgerFile, "l", "events.jsonl", "Ledger file (JSONL)")
	f.StringVar(&c.valFile, "v", "valuations.jsonl", "Valuations file (JSONL)")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	res, err := calc.Portfolio(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintf(w, "Symbol\tOpen Qty\tCost Basis\tRealized\tUnrealized\tDividends\n")
	for _, symbol := range ledger.Symbols() {
		sr, ok := res.BySymbol[symbol]
		if !ok {
			continue
		}
		m := sr.Metrics
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			symbol,
			folio.OpenQuantity(sr.Open),
			m.CostBasis,
			m.RealizedPnL.SignedString(),
			m.UnrealizedPnL.SignedString(),
			m.Dividends.Total,
		)
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t%s\t%s\t%s\n",
		res.Metrics.CostBasis,
		res.Metrics.RealizedPnL.SignedString(),
		res.Metrics.UnrealizedPnL.SignedString(),
		res.Metrics.Dividends.Total,
	)
	w.Flush()
	return subcommands.ExitSuccess
}
