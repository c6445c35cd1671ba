package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"

	"sheetrecon/internal/importer"
	"sheetrecon/internal/mapping"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/session"
	"sheetrecon/internal/transform"
)

type importCmd struct {
	catalog     string
	page        string
	lock        string
	interactive bool
	out         string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a file into canonical rows" }
func (*importCmd) Usage() string {
	return `sheetrecon import -page <id> [-mapping <lock.yaml> | -interactive] [-o <out.json>] <file>

  Imports an XLSX or CSV file. Sheets whose mapping is certain are accepted
  as proposed. The others are confirmed from a mapping lock file (-mapping)
  or reviewed on the terminal (-interactive); without either the import
  stops when a sheet needs review.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.catalog, "catalog", "", "Template catalog YAML (defaults to SHEETRECON_CATALOG).")
	f.StringVar(&p.page, "page", "", "Page id to import into.")
	f.StringVar(&p.lock, "mapping", "", "Mapping lock file confirming the sheets that need review.")
	f.BoolVar(&p.interactive, "interactive", false, "Review uncertain sheets on the terminal.")
	f.StringVar(&p.out, "o", "", "Write the dataset to this file instead of stdout.")
}

// output is the JSON document written by import.
type output struct {
	Page       string            `json:"page"`
	File       string            `json:"file"`
	Session    string            `json:"session"`
	ImportedAt time.Time         `json:"imported_at"`
	Sheets     transform.Dataset `json:"sheets"`
	Errors     []string          `json:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

func (p *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.page == "" || f.NArg() != 1 || (p.lock != "" && p.interactive) {
		fmt.Fprint(os.Stderr, p.Usage())
		return subcommands.ExitUsageError
	}

	e, err := loadEnv(p.catalog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.logger.Sync() //nolint:errcheck

	if err := p.run(ctx, e, f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

func (p *importCmd) run(ctx context.Context, e *env, path string) error {
	wb, err := e.importer.Open(ctx, path)
	if err != nil {
		return err
	}

	res, err := e.importer.Inspect(p.page, wb)
	if err != nil {
		return err
	}

	if !res.Valid {
		printValidation(os.Stderr, res, e.cfg.AutoAccept)
	}

	s, err := e.importer.Begin(res)
	if err != nil {
		return err
	}

	s, err = p.review(e, s)
	if err != nil {
		return err
	}

	ds, report, err := e.importer.Complete(p.page, wb, s)
	if err != nil {
		return err
	}

	doc := output{
		Page:       p.page,
		File:       filepath.Base(path),
		Session:    report.SessionID,
		ImportedAt: time.Now().UTC(),
		Sheets:     ds,
		Errors:     report.Diagnostics.ErrorMessages(),
		Warnings:   report.Diagnostics.WarningMessages(),
	}

	return p.write(doc)
}

func (p *importCmd) review(e *env, s session.Session) (session.Session, error) {
	if s.State() == session.Complete {
		return s, nil
	}

	switch {
	case p.lock != "":
		lock, err := mapping.LoadFile(p.lock)
		if err != nil {
			return s, err
		}

		return e.importer.ApplyLock(p.page, s, lock)
	case p.interactive:
		rv := newReviewer(os.Stdin, os.Stderr, e.cfg.ReviewConfig(), func(sheet string) ([]schema.TargetField, error) {
			return e.registry.FieldsFor(p.page, sheet)
		})

		return rv.run(s)
	default:
		return s, fmt.Errorf("%w: sheets %v need review; use -mapping or -interactive",
			importer.ErrIncomplete, s.Pending())
	}
}

func (p *importCmd) write(doc output) (err error) {
	var w io.Writer = os.Stdout

	if p.out != "" {
		f, cerr := os.Create(p.out)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}

		defer func() { err = errors.Join(err, f.Close()) }()

		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}
