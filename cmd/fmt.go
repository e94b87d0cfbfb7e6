package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/folioscope/folio"
	"github.com/google/subcommands"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct {
	ledgerFile string
	write      bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `folc fmt [-l <ledger_file>] [-w]

  Validates and formats the ledger file. Reads all events, validates them
  (including FIFO oversell checks), sorts them by date, and writes them back
  in a canonical JSONL form. Without -w the result goes to stdout.

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "events.jsonl", "Ledger file (JSONL)")
	f.BoolVar(&c.write, "w", false, "Write the result back to the ledger file")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := decodeLedgerFile(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	if err := folio.EncodeLedger(&buf, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if !c.write {
		os.Stdout.Write(buf.Bytes())
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.ledgerFile, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger %q: %v\n", c.ledgerFile, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d events in %q.\n", ledger.Len(), c.ledgerFile)
	return subcommands.ExitSuccess
}
