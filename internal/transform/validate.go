package transform

import (
	"fmt"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/mapping"
	"sheetrecon/internal/review"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/sheet"
)

// ValidationResult is the outcome of checking one uploaded file against a page.
type ValidationResult struct {
	Valid           bool
	Errors          []string
	Warnings        []string
	NeedsUserReview bool
	MappingResults  map[string]mapping.MappingResult
	// SheetOrder lists the keys of MappingResults in workbook order.
	SheetOrder []string
	// Diagnostics is the structured form of Errors and Warnings.
	Diagnostics *diagnostic.Diagnostics
}

// Results returns the per-sheet proposals in workbook order.
func (v ValidationResult) Results() []mapping.MappingResult {
	out := make([]mapping.MappingResult, 0, len(v.SheetOrder))
	for _, name := range v.SheetOrder {
		out = append(out, v.MappingResults[name])
	}

	return out
}

// Validate checks a workbook against a page template and proposes a column
// mapping per sheet. Checks run in order:
//  1. the file and every bound sheet have rows (zero rows is a hard error);
//  2. each sheet's columns are matched and the review decision is taken;
//  3. review needs are aggregated over sheets;
//  4. required fields without a column are warnings here, since review lets
//     the user map them; CheckRequired turns the leftovers into errors.
func Validate(wb *sheet.Workbook, page *schema.Page, cfg review.Config) ValidationResult {
	diags := &diagnostic.Diagnostics{}
	res := ValidationResult{
		MappingResults: map[string]mapping.MappingResult{},
		Diagnostics:    diags,
	}

	if wb == nil || len(wb.Sheets) == 0 {
		diags.AddError(diagnostic.CodeEmptyFile, "file has no sheets", "", "")
		return res.finish()
	}

	bindings := bind(wb, page, diags)

	rows := 0
	for _, b := range bindings {
		rows += len(b.sheet.Rows)
	}

	if rows == 0 && len(bindings) > 0 {
		diags.AddError(diagnostic.CodeEmptyFile, "file has no data rows", "", "")
	}

	for _, b := range bindings {
		name := b.sheet.Name

		if len(b.sheet.Rows) == 0 {
			if b.def.Optional {
				diags.AddWarning(diagnostic.CodeEmptySheet, "optional sheet has no rows", name, "")
			} else if rows > 0 {
				diags.AddError(diagnostic.CodeEmptySheet, "sheet has no rows", name, "")
			}

			continue
		}

		r := review.Propose(name, b.sheet.Header, b.def.Fields, cfg)

		for _, key := range r.UnmappedRequired {
			diags.AddWarning(diagnostic.CodeUnmappedRequired,
				"required field has no matching column; map it during review", name, key)
		}

		for _, m := range r.SuggestedMappings {
			if review.Annotate(m, cfg.Threshold) == review.LabelLow {
				diags.AddWarning(diagnostic.CodeLowConfidence,
					fmt.Sprintf("column %q matched with confidence %.2f", m.Source.Header, m.Confidence),
					name, m.TargetKey)
			}
		}

		res.MappingResults[name] = r
		res.SheetOrder = append(res.SheetOrder, name)
		res.NeedsUserReview = res.NeedsUserReview || r.NeedsUserReview
	}

	return res.finish()
}

func (v ValidationResult) finish() ValidationResult {
	v.Valid = v.Diagnostics.IsValid()
	v.Errors = v.Diagnostics.ErrorMessages()
	v.Warnings = v.Diagnostics.WarningMessages()

	return v
}

// CheckRequired verifies the final mapping set once review is complete:
// every required field of every non-empty bound sheet must have a column.
// Required computed fields only need their inputs mapped, and a missing input
// is a warning rather than an error.
func CheckRequired(
	wb *sheet.Workbook,
	page *schema.Page,
	final map[string][]mapping.ColumnMapping,
) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}
	if wb == nil {
		diags.AddError(diagnostic.CodeEmptyFile, "file has no sheets", "", "")
		return diags
	}

	for _, b := range bind(wb, page, &diagnostic.Diagnostics{}) {
		if len(b.sheet.Rows) == 0 {
			continue
		}

		assigned := mapping.Targets(final[b.sheet.Name])

		for _, f := range b.def.Fields {
			if !f.Required || assigned[f.Key] {
				continue
			}

			if !f.IsComputed() {
				diags.AddError(diagnostic.CodeUnmappedRequired,
					fmt.Sprintf("required field %q has no column", f.DisplayName()), b.sheet.Name, f.Key)

				continue
			}

			for _, in := range f.Compute.Inputs {
				if !assigned[in] {
					diags.AddWarning(diagnostic.CodeComputeInputs,
						fmt.Sprintf("required computed field %q cannot be computed: input %q has no column",
							f.DisplayName(), in),
						b.sheet.Name, f.Key)
				}
			}
		}
	}

	return diags
}
