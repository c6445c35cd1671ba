// Package main provides the CLI entrypoint for sheetrecon.
//
// sheetrecon imports spreadsheets into a fixed set of canonical fields:
//   - Reads XLSX or CSV uploads
//   - Proposes a column mapping per sheet and flags the uncertain ones
//   - Lets humans review interactively or pin mappings via a YAML lock file
//   - Writes the canonical rows as JSON
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&pagesCmd{}, "")
	commander.Register(&inspectCmd{}, "")
	commander.Register(&importCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
