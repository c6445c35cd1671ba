package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type pagesCmd struct {
	catalog string
}

func (*pagesCmd) Name() string     { return "pages" }
func (*pagesCmd) Synopsis() string { return "list the pages of the template catalog" }
func (*pagesCmd) Usage() string {
	return `sheetrecon pages [-catalog <file>]

  Lists every page with its sheets and fields. Required fields are marked
  with *, computed fields with =.
`
}

func (p *pagesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.catalog, "catalog", "", "Template catalog YAML (defaults to SHEETRECON_CATALOG).")
}

func (p *pagesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv(p.catalog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.logger.Sync() //nolint:errcheck

	for _, id := range e.registry.Pages() {
		page, _ := e.registry.Page(id)
		fmt.Printf("%s\t%s\n", page.ID, page.Title)

		for _, s := range page.Sheets {
			opt := ""
			if s.Optional {
				opt = " (optional)"
			}

			fmt.Printf("  %s%s\n", s.Name, opt)

			for _, f := range s.Fields {
				mark := " "
				switch {
				case f.IsComputed():
					mark = "="
				case f.Required:
					mark = "*"
				}

				fmt.Printf("    %s %-20s %-10s %s\n", mark, f.Key, f.Type, f.DisplayName())
			}
		}
	}

	return subcommands.ExitSuccess
}
