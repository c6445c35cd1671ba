package mapping

import "slices"

// SourceColumn is a header as it appears in the uploaded sheet.
// Columns are identified by position; duplicate headers are never merged.
type SourceColumn struct {
	Header   string `yaml:"header"`
	Position int    `yaml:"position"`
}

// Columns builds the source columns of a header row.
func Columns(headers []string) []SourceColumn {
	cols := make([]SourceColumn, len(headers))
	for i, h := range headers {
		cols[i] = SourceColumn{Header: h, Position: i}
	}

	return cols
}

// ColumnMapping is the committed relationship between a source column and a
// target field. An empty TargetKey means the column is ignored.
type ColumnMapping struct {
	Source     SourceColumn
	TargetKey  string
	Confidence float64
	Required   bool
}

// Ignored returns true if the column is not mapped to any field.
func (m ColumnMapping) Ignored() bool {
	return m.TargetKey == ""
}

// MappingResult is the proposal computed for one sheet.
type MappingResult struct {
	Sheet             string
	SourceColumns     []SourceColumn
	TargetColumns     []string
	SuggestedMappings []ColumnMapping
	// UnmappedSources are columns left without a target, offered for manual addition.
	UnmappedSources []SourceColumn
	// UnmappedRequired are required field keys without a source column.
	UnmappedRequired []string
	NeedsUserReview  bool
}

// MappingFor returns the suggested mapping of a target field.
func (r MappingResult) MappingFor(key string) (ColumnMapping, bool) {
	return Find(r.SuggestedMappings, key)
}

// Find returns the mapping assigned to a target key.
func Find(ms []ColumnMapping, key string) (ColumnMapping, bool) {
	i := slices.IndexFunc(ms, func(m ColumnMapping) bool { return m.TargetKey == key && key != "" })
	if i < 0 {
		return ColumnMapping{}, false
	}

	return ms[i], true
}

// Assigned returns a copy of the entries that carry a target.
func Assigned(ms []ColumnMapping) []ColumnMapping {
	out := make([]ColumnMapping, 0, len(ms))
	for _, m := range ms {
		if !m.Ignored() {
			out = append(out, m)
		}
	}

	return out
}

// DuplicateTargets returns the target keys assigned more than once, in order
// of their second occurrence.
func DuplicateTargets(ms []ColumnMapping) []string {
	seen := make(map[string]bool, len(ms))

	var dups []string

	for _, m := range ms {
		if m.Ignored() {
			continue
		}

		if seen[m.TargetKey] && !slices.Contains(dups, m.TargetKey) {
			dups = append(dups, m.TargetKey)
		}

		seen[m.TargetKey] = true
	}

	return dups
}

// Targets returns the set of assigned target keys.
func Targets(ms []ColumnMapping) map[string]bool {
	out := make(map[string]bool, len(ms))
	for _, m := range ms {
		if !m.Ignored() {
			out[m.TargetKey] = true
		}
	}

	return out
}
