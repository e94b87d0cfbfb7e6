// Package cmd implements the CLI application to inspect a portfolio ledger.
package cmd

import (
	"fmt"
	"os"

	"github.com/folioscope/folio"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package calls Register() and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&returnsCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")
	c.Register(&fmtCmd{}, "ledger")
}

// decodeLedgerFile loads and validates a JSONL ledger file.
func decodeLedgerFile(path string) (*folio.Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", path, err)
	}
	defer f.Close()
	return folio.DecodeLedger(f)
}

// decodeValuationsFile loads a JSONL valuations file.
func decodeValuationsFile(path string) (*folio.StaticValuations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open valuations file %q: %w", path, err)
	}
	defer f.Close()
	return folio.DecodeValuations(f)
}

// parseRange resolves the -period / -s / -d flags into a date range.
func parseRange(start, end, period string) (folio.Range, error) {
	endDate, err := folio.ParseDate(end)
	if err != nil {
		return folio.Range{}, fmt.Errorf("parsing end date: %w", err)
	}
	if start != "" {
		startDate, err := folio.ParseDate(start)
		if err != nil {
			return folio.Range{}, fmt.Errorf("parsing start date: %w", err)
		}
		return folio.NewRange(startDate, endDate), nil
	}
	if period == "" || period == "inception" {
		return folio.SinceInception(endDate), nil
	}
	p, err := folio.ParsePeriod(period)
	if err != nil {
		return folio.Range{}, err
	}
	return p.Range(endDate), nil
}
