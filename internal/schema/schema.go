// Package schema holds the template catalog: per page and sheet, the ordered
// canonical fields an uploaded spreadsheet is reconciled against.
package schema

import (
	"errors"
	"fmt"
	"slices"
)

// ValueType is the type a canonical field value is coerced to.
type ValueType string

const (
	TypeString     ValueType = "string"
	TypeNumber     ValueType = "number"
	TypeDate       ValueType = "date"
	TypePercentage ValueType = "percentage"
)

// IsValid returns true if the value type is a recognized value.
func (v ValueType) IsValid() bool {
	return v == TypeString || v == TypeNumber || v == TypeDate || v == TypePercentage
}

// IsNumeric returns true for types carried as decimals.
func (v ValueType) IsNumeric() bool {
	return v == TypeNumber || v == TypePercentage
}

// Operator names the arithmetic of a computed field.
type Operator string

const (
	// OpDifference computes inputs[0] - inputs[1] - ...
	OpDifference Operator = "difference"
	// OpSum computes inputs[0] + inputs[1] + ...
	OpSum Operator = "sum"
	// OpRatio computes inputs[0] / inputs[1].
	OpRatio Operator = "ratio"
	// OpMargin computes (inputs[0] - inputs[1]) / inputs[0] * 100.
	OpMargin Operator = "margin"
)

// IsValid returns true if the operator is a recognized value.
func (o Operator) IsValid() bool {
	return o == OpDifference || o == OpSum || o == OpRatio || o == OpMargin
}

// arity returns the min and max number of inputs accepted (max -1 means unbounded).
func (o Operator) arity() (int, int) {
	switch o {
	case OpRatio, OpMargin:
		return 2, 2
	default:
		return 2, -1
	}
}

// Computation derives a field value from other fields of the same row.
type Computation struct {
	Op     Operator `yaml:"op"`
	Inputs []string `yaml:"inputs"`
}

// TargetField is a canonical business attribute expected on a sheet.
type TargetField struct {
	Key      string       `yaml:"key"`
	Label    string       `yaml:"label,omitempty"`
	Required bool         `yaml:"required,omitempty"`
	Type     ValueType    `yaml:"type,omitempty"`
	Synonyms []string     `yaml:"synonyms,omitempty"`
	Compute  *Computation `yaml:"compute,omitempty"`

	// tokens are the normalized key, label and synonyms, filled at registry construction.
	tokens []string
}

// Tokens returns the normalized key, label and synonyms of the field.
// The first token is always the normalized key. Fields built outside a
// Registry are normalized on demand.
func (f TargetField) Tokens() []string {
	if f.tokens == nil {
		return fieldTokens(&f)
	}

	return f.tokens
}

// IsComputed returns true if the field is derived from other fields.
func (f TargetField) IsComputed() bool {
	return f.Compute != nil
}

// DisplayName returns the label, or the key when no label is set.
func (f TargetField) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}

	return f.Key
}

// SheetDef lists the fields of one sheet of a page template.
type SheetDef struct {
	Name     string        `yaml:"name"`
	Optional bool          `yaml:"optional,omitempty"`
	Fields   []TargetField `yaml:"fields"`
}

// Field returns the field with the given key.
func (s *SheetDef) Field(key string) (TargetField, bool) {
	i := slices.IndexFunc(s.Fields, func(f TargetField) bool { return f.Key == key })
	if i < 0 {
		return TargetField{}, false
	}

	return s.Fields[i], true
}

// Page is the template of one dashboard page.
type Page struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title,omitempty"`
	Sheets []SheetDef `yaml:"sheets"`
}

// Catalog is the root of a template catalog file.
type Catalog struct {
	Version string `yaml:"version,omitempty"`
	Pages   []Page `yaml:"pages"`
}

// Lookup errors.
var (
	ErrUnknownPage  = errors.New("unknown page")
	ErrUnknownSheet = errors.New("unknown sheet")
)

// unknownSheetError wraps ErrUnknownSheet with the page and sheet names.
func unknownSheetError(page, sheet string) error {
	return fmt.Errorf("%w %q on page %q", ErrUnknownSheet, sheet, page)
}
