package schema

import (
	"errors"
	"fmt"
	"slices"

	"sheetrecon/internal/normalize"
)

// Registry is a read-only, pre-normalized view of a Catalog.
type Registry struct {
	pages map[string]*Page
	order []string
}

// NewRegistry validates the catalog and builds a registry from a deep copy of it.
// Field keys, labels and synonyms are normalized once here so matching never
// re-normalizes target-side strings.
func NewRegistry(catalog Catalog) (*Registry, error) {
	r := &Registry{pages: make(map[string]*Page, len(catalog.Pages))}

	var errs []error

	for _, p := range catalog.Pages {
		if p.ID == "" {
			errs = append(errs, errors.New("page with empty id"))
			continue
		}

		if _, dup := r.pages[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate page %q", p.ID))
			continue
		}

		page := copyPage(p)
		errs = append(errs, preparePage(page)...)

		r.pages[page.ID] = page
		r.order = append(r.order, page.ID)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return r, nil
}

// Page returns the page template with the given id.
func (r *Registry) Page(id string) (*Page, error) {
	p, ok := r.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPage, id)
	}

	return p, nil
}

// Pages returns the page ids in catalog order.
func (r *Registry) Pages() []string {
	return slices.Clone(r.order)
}

// FieldsFor returns the ordered target fields for a sheet of a page.
func (r *Registry) FieldsFor(pageID, sheetName string) ([]TargetField, error) {
	p, err := r.Page(pageID)
	if err != nil {
		return nil, err
	}

	def, ok := p.SheetFor(sheetName)
	if !ok {
		return nil, unknownSheetError(pageID, sheetName)
	}

	return slices.Clone(def.Fields), nil
}

// SheetFor finds the sheet definition for an uploaded sheet name.
// Names are compared after normalization; a page with a single sheet
// definition accepts any name.
func (p *Page) SheetFor(name string) (*SheetDef, bool) {
	token := normalize.Header(name)
	for i := range p.Sheets {
		if normalize.Header(p.Sheets[i].Name) == token {
			return &p.Sheets[i], true
		}
	}

	if len(p.Sheets) == 1 {
		return &p.Sheets[0], true
	}

	return nil, false
}

func copyPage(p Page) *Page {
	out := p
	out.Sheets = make([]SheetDef, len(p.Sheets))

	for i, s := range p.Sheets {
		out.Sheets[i] = s
		out.Sheets[i].Fields = make([]TargetField, len(s.Fields))

		for j, f := range s.Fields {
			f.Synonyms = slices.Clone(f.Synonyms)
			if f.Compute != nil {
				c := *f.Compute
				c.Inputs = slices.Clone(c.Inputs)
				f.Compute = &c
			}

			out.Sheets[i].Fields[j] = f
		}
	}

	return &out
}

// preparePage validates a page and fills the normalized tokens of its fields.
func preparePage(p *Page) []error {
	var errs []error

	if len(p.Sheets) == 0 {
		errs = append(errs, fmt.Errorf("page %q: no sheets", p.ID))
	}

	seenSheets := map[string]struct{}{}

	for i := range p.Sheets {
		s := &p.Sheets[i]
		where := fmt.Sprintf("page %q sheet %q", p.ID, s.Name)

		token := normalize.Header(s.Name)
		if _, dup := seenSheets[token]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate sheet name", where))
		}

		seenSheets[token] = struct{}{}

		errs = append(errs, prepareSheet(where, s)...)
	}

	return errs
}

func prepareSheet(where string, s *SheetDef) []error {
	var errs []error

	byKey := make(map[string]*TargetField, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]

		if f.Type == "" {
			f.Type = TypeString
		}

		switch {
		case f.Key == "":
			errs = append(errs, fmt.Errorf("%s: field %d has empty key", where, i))
			continue
		case normalize.Header(f.Key) == "":
			errs = append(errs, fmt.Errorf("%s: field key %q has no letters or digits", where, f.Key))
			continue
		case byKey[f.Key] != nil:
			errs = append(errs, fmt.Errorf("%s: duplicate field %q", where, f.Key))
			continue
		case !f.Type.IsValid():
			errs = append(errs, fmt.Errorf("%s: field %q has unknown type %q", where, f.Key, f.Type))
		}

		f.tokens = fieldTokens(f)
		byKey[f.Key] = f
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Compute == nil {
			continue
		}

		errs = append(errs, checkComputation(where, f, byKey)...)
	}

	return errs
}

func checkComputation(where string, f *TargetField, byKey map[string]*TargetField) []error {
	var errs []error

	c := f.Compute
	if !c.Op.IsValid() {
		return []error{fmt.Errorf("%s: field %q has unknown operator %q", where, f.Key, c.Op)}
	}

	if !f.Type.IsNumeric() {
		errs = append(errs, fmt.Errorf("%s: computed field %q must be numeric", where, f.Key))
	}

	lo, hi := c.Op.arity()
	if len(c.Inputs) < lo || (hi >= 0 && len(c.Inputs) > hi) {
		errs = append(errs, fmt.Errorf("%s: %s of field %q takes %d inputs, got %d",
			where, c.Op, f.Key, lo, len(c.Inputs)))
	}

	for _, in := range c.Inputs {
		src, ok := byKey[in]

		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%s: field %q depends on unknown field %q", where, f.Key, in))
		case in == f.Key:
			errs = append(errs, fmt.Errorf("%s: field %q depends on itself", where, f.Key))
		case src.Compute != nil:
			errs = append(errs, fmt.Errorf("%s: field %q depends on computed field %q", where, f.Key, in))
		case !src.Type.IsNumeric():
			errs = append(errs, fmt.Errorf("%s: field %q depends on non-numeric field %q", where, f.Key, in))
		}
	}

	return errs
}

// fieldTokens returns the deduplicated normalized key, label and synonyms.
func fieldTokens(f *TargetField) []string {
	candidates := append([]string{f.Key, f.Label}, f.Synonyms...)

	tokens := make([]string, 0, len(candidates))
	for _, c := range candidates {
		t := normalize.Header(c)
		if t == "" || slices.Contains(tokens, t) {
			continue
		}

		tokens = append(tokens, t)
	}

	return tokens
}
