package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/review"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/session"
)

var errCancelled = errors.New("review cancelled")

const maxAlternatives = 5

const reviewHelp = `commands:
  ok           confirm the mapping of this sheet
  set N key    map column N to field key
  add N key    map unmapped column N to unmapped field key
  drop N       leave column N unmapped
  alt key      list the candidate columns of field key
  alt N        list the candidate fields of column N
  back         go to the previous sheet
  next         go to the next sheet (only after ok)
  cancel       abort the import
`

func printProposal(w io.Writer, r mapping.MappingResult, threshold float64) {
	fmt.Fprintf(w, "sheet %q\n", r.Sheet)
	printMappings(w, r.SourceColumns, r.SuggestedMappings, r.UnmappedRequired, threshold)
}

func printMappings(
	w io.Writer,
	columns []mapping.SourceColumn,
	ms []mapping.ColumnMapping,
	missing []string,
	threshold float64,
) {
	for _, c := range columns {
		m, ok := findColumn(ms, c.Position)
		if !ok {
			fmt.Fprintf(w, "  %2d %-24q -> (%s)\n", c.Position, c.Header, review.LabelIgnored)
			continue
		}

		fmt.Fprintf(w, "  %2d %-24q -> %-20s %.2f %s\n",
			c.Position, c.Header, m.TargetKey, m.Confidence, review.Annotate(m, threshold))
	}

	if len(missing) > 0 {
		fmt.Fprintf(w, "  required fields without a column: %s\n", strings.Join(missing, ", "))
	}
}

func findColumn(ms []mapping.ColumnMapping, position int) (mapping.ColumnMapping, bool) {
	i := slices.IndexFunc(ms, func(m mapping.ColumnMapping) bool { return m.Source.Position == position })
	if i < 0 {
		return mapping.ColumnMapping{}, false
	}

	return ms[i], true
}

// reviewer drives a session from line commands.
type reviewer struct {
	fields    func(sheet string) ([]schema.TargetField, error)
	cfg       review.Config
	in        *bufio.Scanner
	out       io.Writer
	proposals map[string]*review.Proposal
}

func newReviewer(
	in io.Reader,
	out io.Writer,
	cfg review.Config,
	fields func(sheet string) ([]schema.TargetField, error),
) *reviewer {
	return &reviewer{
		fields:    fields,
		cfg:       cfg,
		in:        bufio.NewScanner(in),
		out:       out,
		proposals: map[string]*review.Proposal{},
	}
}

// run reads commands until the session is Complete, the input ends or the
// user cancels.
func (rv *reviewer) run(s session.Session) (session.Session, error) {
	if s.State() == session.Reviewing {
		fmt.Fprint(rv.out, reviewHelp)
	}

	for s.State() == session.Reviewing {
		p, err := rv.proposal(s)
		if err != nil {
			return s, err
		}

		rv.show(s, p)
		fmt.Fprint(rv.out, "> ")

		if !rv.in.Scan() {
			if err := rv.in.Err(); err != nil {
				return s, err
			}

			return s, errCancelled
		}

		next, err := rv.apply(s, p, strings.Fields(rv.in.Text()))
		if errors.Is(err, errCancelled) {
			return next, err
		}

		if err != nil {
			fmt.Fprintf(rv.out, "error: %v\n", err)
		}

		s = next
	}

	return s, nil
}

func (rv *reviewer) proposal(s session.Session) (*review.Proposal, error) {
	cur, _ := s.Current()
	if p, ok := rv.proposals[cur.Sheet]; ok {
		return p, nil
	}

	fields, err := rv.fields(cur.Sheet)
	if err != nil {
		return nil, err
	}

	p := review.NewProposal(cur, fields, rv.cfg)
	rv.proposals[cur.Sheet] = p

	return p, nil
}

func (rv *reviewer) show(s session.Session, p *review.Proposal) {
	cur, _ := s.Current()

	status := ""
	if s.IsFrozen() {
		status = " (confirmed)"
	}

	fmt.Fprintf(rv.out, "\nsheet %d/%d %q%s\n", s.Index()+1, len(s.Pending()), cur.Sheet, status)

	ms := p.Mappings()
	if frozen, ok := s.Confirmed(cur.Sheet); ok {
		ms = frozen
	}

	missing := p.MissingRequired()
	printMappings(rv.out, cur.SourceColumns, ms, missing, rv.cfg.Threshold)

	if s.IsFrozen() {
		return
	}

	for _, key := range missing {
		if b := p.Alternatives(key).Best(); b != nil {
			fmt.Fprintf(rv.out, "  best column for %s: %d %q %.2f\n", key, b.Source.Position, b.Source.Header, b.Confidence)
		}
	}
}

// alternatives lists at most maxAlternatives candidates of a field, or of a
// column when the argument is a number.
func (rv *reviewer) alternatives(p *review.Proposal, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: alt key | alt N")
	}

	if pos, err := strconv.Atoi(args[1]); err == nil {
		fmt.Fprintf(rv.out, "fields for column %d:\n", pos)

		cands := p.Suggestions(pos).Top(maxAlternatives)
		for _, c := range cands {
			fmt.Fprintf(rv.out, "  %-20s %.2f %s\n", c.Target.Key, c.Confidence, c.Signal)
		}

		if len(cands) == 0 {
			fmt.Fprintln(rv.out, "  (none)")
		}

		return nil
	}

	key, res := args[1], p.Result()
	if !slices.Contains(res.TargetColumns, key) {
		return fmt.Errorf("%w: %q", review.ErrUnknownField, key)
	}

	current := "unmapped"
	if m, ok := res.MappingFor(key); ok {
		current = fmt.Sprintf("column %d", m.Source.Position)
	}

	fmt.Fprintf(rv.out, "columns for %s (%s):\n", key, current)

	cands := p.Alternatives(key).Top(maxAlternatives)
	for _, c := range cands {
		fmt.Fprintf(rv.out, "  %2d %-24q %.2f %s\n", c.Source.Position, c.Source.Header, c.Confidence, c.Signal)
	}

	if len(cands) == 0 {
		fmt.Fprintln(rv.out, "  (none)")
	}

	return nil
}

func (rv *reviewer) apply(s session.Session, p *review.Proposal, args []string) (session.Session, error) {
	if len(args) == 0 {
		return s, nil
	}

	switch args[0] {
	case "ok":
		return s.Confirm(p.Mappings())
	case "back":
		next, err := s.Back()
		if errors.Is(err, session.ErrNoPrevious) {
			return s, errors.New("this is the first sheet")
		}

		return next, err
	case "next":
		return s.Forward()
	case "cancel":
		rv.proposals = map[string]*review.Proposal{}
		return s.Cancel(), errCancelled
	case "alt":
		return s, rv.alternatives(p, args)
	case "set", "add", "drop":
		if s.IsFrozen() {
			return s, session.ErrFrozen
		}

		return s, rv.edit(p, args)
	case "help", "?":
		fmt.Fprint(rv.out, reviewHelp)
		return s, nil
	default:
		return s, fmt.Errorf("unknown command %q", args[0])
	}
}

func (rv *reviewer) edit(p *review.Proposal, args []string) error {
	want := map[string]int{"set": 3, "add": 3, "drop": 2}[args[0]]
	if len(args) != want {
		return fmt.Errorf("usage: %s", map[string]string{"set": "set N key", "add": "add N key", "drop": "drop N"}[args[0]])
	}

	pos, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("column must be a number: %q", args[1])
	}

	switch args[0] {
	case "drop":
		return p.Remove(pos)
	case "add":
		return p.Add(pos, args[2])
	default:
		return p.Assign(pos, args[2])
	}
}
