package match

import (
	"sort"
	"strings"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/normalize"
	"sheetrecon/internal/schema"
)

// Scoring defaults.
const (
	// DefaultMinSimilarity is the lowest edit-distance similarity offered as a candidate.
	DefaultMinSimilarity = 0.5
	// DefaultContainmentRatio is the length ratio a substring match must exceed.
	DefaultContainmentRatio = 0.6
	// DefaultContainmentScore is the confidence of a containment match.
	DefaultContainmentScore = 0.8
)

// Options tunes the scoring rules.
type Options struct {
	MinSimilarity    float64
	ContainmentRatio float64
	ContainmentScore float64
}

// DefaultOptions returns the default scoring options.
func DefaultOptions() Options {
	return Options{
		MinSimilarity:    DefaultMinSimilarity,
		ContainmentRatio: DefaultContainmentRatio,
		ContainmentScore: DefaultContainmentScore,
	}
}

// Score rates one (source column, target field) pair. The confidence is the
// highest of three signals, compared against the field's key, label and synonyms:
//  1. exact token equality: 1.0, no further scoring;
//  2. containment: one token inside the other with a length ratio above
//     ContainmentRatio: ContainmentScore;
//  3. edit-distance similarity, kept only when at least MinSimilarity.
//
// Computed fields only accept exact matches. A zero confidence means the pair
// is discarded.
func Score(source mapping.SourceColumn, target schema.TargetField, opts Options) CandidateScore {
	return score(source, normalize.Header(source.Header), target, 0, opts)
}

func score(source mapping.SourceColumn, token string, target schema.TargetField, idx int, opts Options) CandidateScore {
	c := CandidateScore{
		Source:      source,
		Target:      target,
		TargetIndex: idx,
		SourceToken: token,
	}

	if token == "" {
		return c
	}

	for _, t := range target.Tokens() {
		if t == token {
			c.Confidence, c.Signal, c.MatchedToken = 1.0, SignalExact, t
			return c
		}

		if target.IsComputed() {
			continue
		}

		if contains(token, t, opts.ContainmentRatio) && opts.ContainmentScore > c.Confidence {
			c.Confidence, c.Signal, c.MatchedToken = opts.ContainmentScore, SignalContainment, t
		}

		if sim := Similarity(token, t); sim >= opts.MinSimilarity && sim > c.Confidence {
			c.Confidence, c.Signal, c.MatchedToken = sim, SignalSimilarity, t
		}
	}

	return c
}

// contains reports whether one token is a substring of the other and the
// shorter-to-longer length ratio exceeds minRatio.
func contains(a, b string, minRatio float64) bool {
	if len(a) > len(b) {
		a, b = b, a
	}

	if !strings.Contains(b, a) {
		return false
	}

	ratio := float64(len([]rune(a))) / float64(len([]rune(b)))

	return ratio > minRatio
}

// Match scores every (source column, target field) pair and returns the
// non-discarded candidates, ranked.
func Match(sources []mapping.SourceColumn, targets []schema.TargetField, opts Options) CandidateList {
	var candidates CandidateList

	for _, src := range sources {
		token := normalize.Header(src.Header)
		if token == "" {
			continue
		}

		for i := range targets {
			c := score(src, token, targets[i], i, opts)
			if c.Confidence > 0 {
				candidates = append(candidates, c)
			}
		}
	}

	sort.Stable(candidates)

	return candidates
}
