package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/subcommands"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/transform"
)

type inspectCmd struct {
	catalog string
	page    string
	write   string
	debug   bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "validate a file and show the proposed column mapping" }
func (*inspectCmd) Usage() string {
	return `sheetrecon inspect -page <id> [-write <lock.yaml>] [-debug] <file>

  Validates an XLSX or CSV file against a page of the catalog and prints the
  column mapping proposed for each sheet. With -write, the proposal is saved
  as a mapping lock file to be reviewed by hand and passed to import -mapping.
`
}

func (p *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.catalog, "catalog", "", "Template catalog YAML (defaults to SHEETRECON_CATALOG).")
	f.StringVar(&p.page, "page", "", "Page id to import into.")
	f.StringVar(&p.write, "write", "", "Write the proposal as a mapping lock file.")
	f.BoolVar(&p.debug, "debug", false, "Dump the full validation result.")
}

func (p *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.page == "" || f.NArg() != 1 {
		fmt.Fprint(os.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	e, err := loadEnv(p.catalog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.logger.Sync() //nolint:errcheck

	wb, err := e.importer.Open(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	res, err := e.importer.Inspect(p.page, wb)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printValidation(os.Stdout, res, e.cfg.AutoAccept)

	if p.debug {
		spew.Fdump(os.Stderr, res)
	}

	if p.write != "" {
		if err := mapping.WriteFile(mapping.FromResults(p.page, res.Results()), p.write); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		fmt.Printf("mapping written to %s\n", p.write)
	}

	if !res.Valid {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

func printValidation(w io.Writer, res transform.ValidationResult, threshold float64) {
	for _, msg := range res.Errors {
		fmt.Fprintf(w, "error: %s\n", msg)
	}

	for _, msg := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}

	for _, r := range res.Results() {
		printProposal(w, r, threshold)
	}

	fmt.Fprintf(w, "valid: %t, needs review: %t\n", res.Valid, res.NeedsUserReview)
}
