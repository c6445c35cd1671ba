package match

import (
	"slices"

	"sheetrecon/internal/mapping"
)

// Resolve turns scored candidates into a one-to-one assignment.
//
// The assignment is greedy: candidates are walked by confidence (descending),
// then source position and target order (ascending), and a pair is committed
// only when both its column and its field are still free. A field that is
// already taken is therefore never preferred over a free one. This favors
// strong unambiguous matches first and is an approximation of maximum-weight
// bipartite matching, not a guarantee of the globally best assignment.
//
// Unassigned columns are absent from the result; see Unassigned. The result is
// ordered by source position.
func Resolve(candidates CandidateList) []mapping.ColumnMapping {
	ranked := candidates.Sorted()

	usedSources := map[int]bool{}
	usedTargets := map[string]bool{}

	var out []mapping.ColumnMapping

	for _, c := range ranked {
		if c.Confidence <= 0 || usedSources[c.Source.Position] || usedTargets[c.Target.Key] {
			continue
		}

		usedSources[c.Source.Position] = true
		usedTargets[c.Target.Key] = true

		out = append(out, mapping.ColumnMapping{
			Source:     c.Source,
			TargetKey:  c.Target.Key,
			Confidence: c.Confidence,
			Required:   c.Target.Required,
		})
	}

	sortByPosition(out)

	return out
}

// Unassigned returns the source columns without a target in mappings.
func Unassigned(sources []mapping.SourceColumn, mappings []mapping.ColumnMapping) []mapping.SourceColumn {
	assigned := map[int]bool{}

	for _, m := range mappings {
		if !m.Ignored() {
			assigned[m.Source.Position] = true
		}
	}

	var out []mapping.SourceColumn

	for _, src := range sources {
		if !assigned[src.Position] {
			out = append(out, src)
		}
	}

	return out
}

func sortByPosition(ms []mapping.ColumnMapping) {
	slices.SortStableFunc(ms, func(a, b mapping.ColumnMapping) int {
		return a.Source.Position - b.Source.Position
	})
}
