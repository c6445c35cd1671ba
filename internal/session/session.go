// Package session sequences the human review of the sheets whose mapping
// could not be auto-accepted.
//
// A Session is a value: every transition returns a new Session and leaves the
// receiver untouched, so a caller can keep the previous state around (for an
// undo button, say) and tests can drive the state machine directly.
//
//	Idle --Start--> Reviewing(0) --Confirm--> Reviewing(1) ... --Confirm--> Complete
//	                Reviewing(i) --Back--> Reviewing(i-1)
//	                Reviewing(i) --Forward--> Reviewing(i+1)   (sheet i frozen)
//	any --Cancel--> Idle
//
// A confirmed sheet is frozen: no later transition of the same session
// changes its mapping.
package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"sheetrecon/internal/mapping"
)

//go:generate go tool stringer -type=State -output=state_string.go

// State is the phase of a review session.
type State int

const (
	Idle State = iota
	Reviewing
	Complete
)

// Transition errors.
var (
	ErrNotIdle         = errors.New("session already started")
	ErrNotReviewing    = errors.New("session is not reviewing")
	ErrNotComplete     = errors.New("session is not complete")
	ErrNoPrevious      = errors.New("no previous sheet")
	ErrNotConfirmed    = errors.New("current sheet not confirmed")
	ErrFrozen          = errors.New("sheet already confirmed")
	ErrDuplicateTarget = errors.New("field mapped more than once")
)

// Session tracks review progress over the sheets of one upload.
type Session struct {
	id        string
	state     State
	results   []mapping.MappingResult
	flagged   []int
	cursor    int
	confirmed map[string][]mapping.ColumnMapping
}

// New creates an idle session over the per-sheet proposals, in sheet order.
func New(results []mapping.MappingResult) Session {
	s := Session{
		id:      uuid.NewString(),
		results: slices.Clone(results),
	}

	for i, r := range results {
		if r.NeedsUserReview {
			s.flagged = append(s.flagged, i)
		}
	}

	return s
}

// ID identifies the session in logs.
func (s Session) ID() string { return s.id }

// State returns the current phase.
func (s Session) State() State { return s.state }

// Index returns the position of the current sheet among the sheets pending review.
func (s Session) Index() int { return s.cursor }

// Pending returns the names of the sheets that need review, in order.
func (s Session) Pending() []string {
	names := make([]string, len(s.flagged))
	for i, idx := range s.flagged {
		names[i] = s.results[idx].Sheet
	}

	return names
}

// Current returns the proposal of the sheet under review.
func (s Session) Current() (mapping.MappingResult, bool) {
	if s.state != Reviewing {
		return mapping.MappingResult{}, false
	}

	return s.results[s.flagged[s.cursor]], true
}

// Confirmed returns the frozen mapping of a sheet.
func (s Session) Confirmed(sheet string) ([]mapping.ColumnMapping, bool) {
	ms, ok := s.confirmed[sheet]

	return slices.Clone(ms), ok
}

// IsFrozen reports whether the sheet under review has been confirmed.
func (s Session) IsFrozen() bool {
	r, ok := s.Current()
	if !ok {
		return false
	}

	_, frozen := s.confirmed[r.Sheet]

	return frozen
}

// Start enters review of the first flagged sheet, or completes at once when
// no sheet needs review.
func (s Session) Start() (Session, error) {
	if s.state != Idle {
		return s, fmt.Errorf("%w (state %s)", ErrNotIdle, s.state)
	}

	next := s
	next.confirmed = map[string][]mapping.ColumnMapping{}
	next.cursor = 0

	if len(s.flagged) == 0 {
		next.state = Complete
	} else {
		next.state = Reviewing
	}

	return next, nil
}

// Confirm freezes the current sheet's mapping, keeping only entries with a
// target, and moves to the next flagged sheet or to Complete.
func (s Session) Confirm(mappings []mapping.ColumnMapping) (Session, error) {
	cur, ok := s.Current()
	if !ok {
		return s, fmt.Errorf("%w (state %s)", ErrNotReviewing, s.state)
	}

	if _, frozen := s.confirmed[cur.Sheet]; frozen {
		return s, fmt.Errorf("%w: %q", ErrFrozen, cur.Sheet)
	}

	kept := mapping.Assigned(mappings)
	if dups := mapping.DuplicateTargets(kept); len(dups) > 0 {
		return s, fmt.Errorf("%w: %v", ErrDuplicateTarget, dups)
	}

	next := s
	next.confirmed = maps.Clone(s.confirmed)
	next.confirmed[cur.Sheet] = kept

	if s.cursor+1 < len(s.flagged) {
		next.cursor = s.cursor + 1
	} else {
		next.state = Complete
	}

	return next, nil
}

// Back returns to the previous flagged sheet. At the first sheet there is no
// previous sheet within mapping review; the caller returns to its prior step.
func (s Session) Back() (Session, error) {
	if s.state != Reviewing {
		return s, fmt.Errorf("%w (state %s)", ErrNotReviewing, s.state)
	}

	if s.cursor == 0 {
		return s, ErrNoPrevious
	}

	next := s
	next.cursor--

	return next, nil
}

// Forward moves past a sheet that is already confirmed, after going Back.
func (s Session) Forward() (Session, error) {
	if s.state != Reviewing {
		return s, fmt.Errorf("%w (state %s)", ErrNotReviewing, s.state)
	}

	if !s.IsFrozen() {
		return s, ErrNotConfirmed
	}

	next := s
	if s.cursor+1 < len(s.flagged) {
		next.cursor++
	} else {
		next.state = Complete
	}

	return next, nil
}

// Cancel discards every confirmation and returns to Idle.
func (s Session) Cancel() Session {
	next := s
	next.state = Idle
	next.cursor = 0
	next.confirmed = nil

	return next
}

// Finalize returns the mapping of every sheet: confirmed mappings for the
// reviewed sheets, auto-detected ones (entries with a target) for the rest.
func (s Session) Finalize() (map[string][]mapping.ColumnMapping, error) {
	if s.state != Complete {
		return nil, fmt.Errorf("%w (state %s)", ErrNotComplete, s.state)
	}

	out := make(map[string][]mapping.ColumnMapping, len(s.results))

	for _, r := range s.results {
		if ms, ok := s.confirmed[r.Sheet]; ok {
			out[r.Sheet] = slices.Clone(ms)
			continue
		}

		out[r.Sheet] = mapping.Assigned(r.SuggestedMappings)
	}

	return out, nil
}
