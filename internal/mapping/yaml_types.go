package mapping

import "slices"

// File is the root of a mapping lock file.
type File struct {
	// Version of the lock file schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Page is the template page the mapping was reviewed against.
	Page string `yaml:"page"`

	// Sheets holds one entry per uploaded sheet.
	Sheets []SheetMapping `yaml:"sheets"`
}

// SheetMapping pins the column mapping of one sheet.
type SheetMapping struct {
	Sheet   string        `yaml:"sheet"`
	Columns []ColumnEntry `yaml:"columns"`
}

// ColumnEntry is the YAML form of a ColumnMapping.
type ColumnEntry struct {
	Position   int     `yaml:"position"`
	Header     string  `yaml:"header,omitempty"`
	Target     string  `yaml:"target,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

// Sheet returns the entry for the named sheet.
func (f *File) Sheet(name string) (*SheetMapping, bool) {
	i := slices.IndexFunc(f.Sheets, func(s SheetMapping) bool { return s.Sheet == name })
	if i < 0 {
		return nil, false
	}

	return &f.Sheets[i], true
}

// Mappings converts the entries to column mappings. The required set marks
// which target keys are required fields.
func (s SheetMapping) Mappings(required map[string]bool) []ColumnMapping {
	out := make([]ColumnMapping, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = ColumnMapping{
			Source:     SourceColumn{Header: c.Header, Position: c.Position},
			TargetKey:  c.Target,
			Confidence: c.Confidence,
			Required:   required[c.Target],
		}
	}

	return out
}

// FromResults builds a lock file from sheet proposals. Unmapped source columns
// are listed without a target so a reviewer can fill them in.
func FromResults(page string, results []MappingResult) *File {
	f := &File{Version: "1", Page: page}

	for _, r := range results {
		sm := SheetMapping{Sheet: r.Sheet}
		for _, m := range r.SuggestedMappings {
			sm.Columns = append(sm.Columns, ColumnEntry{
				Position:   m.Source.Position,
				Header:     m.Source.Header,
				Target:     m.TargetKey,
				Confidence: m.Confidence,
			})
		}

		for _, c := range r.UnmappedSources {
			sm.Columns = append(sm.Columns, ColumnEntry{Position: c.Position, Header: c.Header})
		}

		slices.SortFunc(sm.Columns, func(a, b ColumnEntry) int { return a.Position - b.Position })
		f.Sheets = append(f.Sheets, sm)
	}

	return f
}
