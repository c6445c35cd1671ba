package match

import (
	"sort"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/schema"
)

// Signal names the rule that produced a candidate's confidence.
type Signal int

const (
	SignalNone Signal = iota
	SignalSimilarity
	SignalContainment
	SignalExact
)

// String returns a human-readable signal name.
func (s Signal) String() string {
	switch s {
	case SignalSimilarity:
		return "similarity"
	case SignalContainment:
		return "containment"
	case SignalExact:
		return "exact"
	default:
		return "none"
	}
}

// CandidateScore represents a potential mapping from a source column to a target field.
type CandidateScore struct {
	Source mapping.SourceColumn
	Target schema.TargetField

	// TargetIndex is the field's position in the sheet definition (tie-breaker).
	TargetIndex int

	// Confidence in [0,1]; zero means the pair was discarded.
	Confidence float64
	Signal     Signal

	// Metadata for debugging/explanation
	SourceToken  string
	MatchedToken string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []CandidateScore

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by confidence descending, then by source position and target index for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Confidence != c[j].Confidence {
		return c[i].Confidence > c[j].Confidence
	}

	if c[i].Source.Position != c[j].Source.Position {
		return c[i].Source.Position < c[j].Source.Position
	}

	return c[i].TargetIndex < c[j].TargetIndex
}

// Sorted returns a ranked copy of the list.
func (c CandidateList) Sorted() CandidateList {
	out := make(CandidateList, len(c))
	copy(out, c)
	sort.Stable(out)

	return out
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *CandidateScore {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// ForTarget returns the ranked candidates of one target field.
func (c CandidateList) ForTarget(key string) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Target.Key == key {
			result = append(result, cand)
		}
	}

	return result.Sorted()
}

// ForSource returns the ranked candidates of one source column.
func (c CandidateList) ForSource(position int) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Source.Position == position {
			result = append(result, cand)
		}
	}

	return result.Sorted()
}
