package review

import (
	"errors"
	"fmt"
	"slices"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/match"
	"sheetrecon/internal/schema"
)

// Proposal edit errors.
var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownField  = errors.New("unknown field")
	ErrColumnMapped  = errors.New("column already mapped")
	ErrTargetTaken   = errors.New("field already mapped")
	ErrNotMapped     = errors.New("column not mapped")
)

// UserConfidence is recorded for mappings set by hand.
const UserConfidence = 1.0

// Proposal is an editable copy of a sheet's suggested mapping. Every edit
// keeps the mapping one-to-one.
type Proposal struct {
	sheet      string
	sources    []mapping.SourceColumn
	fields     []schema.TargetField
	cfg        Config
	candidates match.CandidateList
	mappings   []mapping.ColumnMapping
}

// NewProposal starts an edit session over a sheet's proposal.
func NewProposal(result mapping.MappingResult, fields []schema.TargetField, cfg Config) *Proposal {
	return &Proposal{
		sheet:      result.Sheet,
		sources:    slices.Clone(result.SourceColumns),
		fields:     slices.Clone(fields),
		cfg:        cfg,
		candidates: match.Match(result.SourceColumns, fields, cfg.Match),
		mappings:   mapping.Assigned(result.SuggestedMappings),
	}
}

// Sheet returns the sheet name.
func (p *Proposal) Sheet() string {
	return p.sheet
}

// Mappings returns the current assigned mappings ordered by source position.
func (p *Proposal) Mappings() []mapping.ColumnMapping {
	out := slices.Clone(p.mappings)
	slices.SortStableFunc(out, func(a, b mapping.ColumnMapping) int {
		return a.Source.Position - b.Source.Position
	})

	return out
}

// Result returns the proposal as a MappingResult with its review decision recomputed.
func (p *Proposal) Result() mapping.MappingResult {
	return buildResult(p.sheet, p.sources, p.fields, p.Mappings(), p.cfg.Threshold)
}

// MissingRequired returns the required fields not yet mapped.
func (p *Proposal) MissingRequired() []string {
	return MissingRequired(p.mappings, p.fields)
}

// Alternatives returns the ranked candidate columns of a field.
func (p *Proposal) Alternatives(key string) match.CandidateList {
	return p.candidates.ForTarget(key)
}

// Suggestions returns the ranked candidate fields of a column.
func (p *Proposal) Suggestions(position int) match.CandidateList {
	return p.candidates.ForSource(position)
}

// Add maps an unmapped column to a free field.
func (p *Proposal) Add(position int, key string) error {
	src, f, err := p.lookup(position, key)
	if err != nil {
		return err
	}

	if p.indexOfColumn(position) >= 0 {
		return fmt.Errorf("%w: column %d", ErrColumnMapped, position)
	}

	if p.indexOfField(key) >= 0 {
		return fmt.Errorf("%w: %q", ErrTargetTaken, key)
	}

	p.mappings = append(p.mappings, userMapping(src, f))

	return nil
}

// Assign maps a column to a field, replacing the column's previous target and
// releasing the field from any other column.
func (p *Proposal) Assign(position int, key string) error {
	src, f, err := p.lookup(position, key)
	if err != nil {
		return err
	}

	p.mappings = slices.DeleteFunc(p.mappings, func(m mapping.ColumnMapping) bool {
		return m.Source.Position == position || m.TargetKey == key
	})
	p.mappings = append(p.mappings, userMapping(src, f))

	return nil
}

// Remove drops the mapping of a column; the column becomes ignored.
func (p *Proposal) Remove(position int) error {
	i := p.indexOfColumn(position)
	if i < 0 {
		return fmt.Errorf("%w: column %d", ErrNotMapped, position)
	}

	p.mappings = slices.Delete(p.mappings, i, i+1)

	return nil
}

func (p *Proposal) lookup(position int, key string) (mapping.SourceColumn, schema.TargetField, error) {
	si := slices.IndexFunc(p.sources, func(s mapping.SourceColumn) bool { return s.Position == position })
	if si < 0 {
		return mapping.SourceColumn{}, schema.TargetField{}, fmt.Errorf("%w: %d", ErrUnknownColumn, position)
	}

	fi := slices.IndexFunc(p.fields, func(f schema.TargetField) bool { return f.Key == key })
	if fi < 0 {
		return mapping.SourceColumn{}, schema.TargetField{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	return p.sources[si], p.fields[fi], nil
}

func (p *Proposal) indexOfColumn(position int) int {
	return slices.IndexFunc(p.mappings, func(m mapping.ColumnMapping) bool { return m.Source.Position == position })
}

func (p *Proposal) indexOfField(key string) int {
	return slices.IndexFunc(p.mappings, func(m mapping.ColumnMapping) bool { return m.TargetKey == key })
}

func userMapping(src mapping.SourceColumn, f schema.TargetField) mapping.ColumnMapping {
	return mapping.ColumnMapping{
		Source:     src,
		TargetKey:  f.Key,
		Confidence: UserConfidence,
		Required:   f.Required,
	}
}
