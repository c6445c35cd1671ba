// Package review decides whether a sheet's proposed column mapping can be
// accepted as is or needs human confirmation, and exposes the proposal for
// editing.
package review

import (
	"slices"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/match"
	"sheetrecon/internal/schema"
)

// DefaultThreshold is the confidence at or above which a mapping is auto-accepted.
const DefaultThreshold = 0.7

// Config holds the review and scoring parameters.
type Config struct {
	Threshold float64
	Match     match.Options
}

// DefaultConfig returns the default review configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Match:     match.DefaultOptions(),
	}
}

// Label annotates a mapping for display.
type Label string

const (
	// LabelAuto marks a mapping detected with enough confidence.
	LabelAuto Label = "auto-detected"
	// LabelLow marks a mapping the user should check.
	LabelLow Label = "low confidence"
	// LabelIgnored marks a column without target.
	LabelIgnored Label = "ignored"
)

// Annotate returns the display label of a mapping. It never blocks.
func Annotate(m mapping.ColumnMapping, threshold float64) Label {
	switch {
	case m.Ignored():
		return LabelIgnored
	case m.Confidence >= threshold:
		return LabelAuto
	default:
		return LabelLow
	}
}

// Evaluate reports whether a sheet needs user review: some required field has
// no source column, or some suggested mapping is below the threshold.
// A required computed field counts as present when all its inputs are mapped.
func Evaluate(result mapping.MappingResult, fields []schema.TargetField, threshold float64) bool {
	if len(MissingRequired(result.SuggestedMappings, fields)) > 0 {
		return true
	}

	for _, m := range result.SuggestedMappings {
		if !m.Ignored() && m.Confidence < threshold {
			return true
		}
	}

	return false
}

// MissingRequired returns the keys of required fields absent from mappings,
// in field order. A computed field counts as present when all its inputs are.
func MissingRequired(mappings []mapping.ColumnMapping, fields []schema.TargetField) []string {
	assigned := mapping.Targets(mappings)

	var missing []string

	for _, f := range fields {
		if !f.Required || assigned[f.Key] {
			continue
		}

		if f.IsComputed() && !slices.ContainsFunc(f.Compute.Inputs, func(in string) bool { return !assigned[in] }) {
			continue
		}

		missing = append(missing, f.Key)
	}

	return missing
}

// Propose matches a sheet's header row against its target fields and returns
// the proposal with its review decision.
func Propose(sheet string, headers []string, fields []schema.TargetField, cfg Config) mapping.MappingResult {
	sources := mapping.Columns(headers)
	suggested := match.Resolve(match.Match(sources, fields, cfg.Match))

	return buildResult(sheet, sources, fields, suggested, cfg.Threshold)
}

func buildResult(
	sheet string,
	sources []mapping.SourceColumn,
	fields []schema.TargetField,
	suggested []mapping.ColumnMapping,
	threshold float64,
) mapping.MappingResult {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}

	r := mapping.MappingResult{
		Sheet:             sheet,
		SourceColumns:     slices.Clone(sources),
		TargetColumns:     keys,
		SuggestedMappings: suggested,
		UnmappedSources:   match.Unassigned(sources, suggested),
		UnmappedRequired:  MissingRequired(suggested, fields),
	}
	r.NeedsUserReview = Evaluate(r, fields, threshold)

	return r
}
