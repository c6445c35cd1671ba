package transform

import (
	"errors"
	"fmt"
	"strings"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/mapping"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/sheet"
)

// Row is one canonical record keyed by target field key. Values are
// decimal.Decimal, time.Time or string.
type Row map[string]any

// Dataset holds the canonical rows of every bound sheet, keyed by sheet name.
type Dataset map[string][]Row

// maxReportedRows bounds the row numbers listed in a dropped-rows error.
const maxReportedRows = 5

// Transform reads every bound sheet through its final mapping and returns the
// canonical rows. Row numbers in messages count the header as row 1.
//
// A required field that is empty or fails to coerce drops its row. An
// optional field that fails is left unset and reported once per field.
// Computed fields run after direct ones and never replace a mapped value.
// A bound sheet without any mapped column yields an empty, non-nil slice.
func Transform(
	wb *sheet.Workbook,
	page *schema.Page,
	final map[string][]mapping.ColumnMapping,
) (Dataset, *diagnostic.Diagnostics) {
	diags := &diagnostic.Diagnostics{}
	out := Dataset{}

	if wb == nil {
		diags.AddError(diagnostic.CodeEmptyFile, "file has no sheets", "", "")
		return out, diags
	}

	for _, b := range bind(wb, page, &diagnostic.Diagnostics{}) {
		out[b.sheet.Name] = transformSheet(b, mapping.Assigned(final[b.sheet.Name]), diags)
	}

	return out, diags
}

// fieldFailures collects the rows where one optional field failed.
type fieldFailures struct {
	rows  []int
	first error
}

func transformSheet(b binding, ms []mapping.ColumnMapping, diags *diagnostic.Diagnostics) []Row {
	// Computed fields only read mapped values, so a sheet without mappings
	// yields no rows.
	if len(ms) == 0 {
		return []Row{}
	}

	name := b.sheet.Name
	rows := make([]Row, 0, len(b.sheet.Rows))

	var (
		dropped      []int
		firstDrop    string
		optional     = map[string]*fieldFailures{}
		computeFails = map[string]*fieldFailures{}
		mapped       = mapping.Targets(ms)
	)

	for i := range b.sheet.Rows {
		rowNum := i + 2
		row := Row{}
		ok := true

		for _, m := range ms {
			f, known := b.def.Field(m.TargetKey)
			if !known {
				continue
			}

			v, err := Coerce(b.sheet.Cell(i, m.Source.Position), f.Type)
			if err == nil {
				row[f.Key] = v
				continue
			}

			if f.Required {
				if ok {
					dropped = append(dropped, rowNum)
					if firstDrop == "" {
						firstDrop = fmt.Sprintf("%s: %v", f.DisplayName(), err)
					}
				}

				ok = false

				continue
			}

			if !errors.Is(err, ErrEmpty) {
				record(optional, f.Key, rowNum, err)
			}
		}

		if !ok {
			continue
		}

		for _, f := range b.def.Fields {
			if !f.IsComputed() || mapped[f.Key] {
				continue
			}

			v, err := Compute(f.Compute, row)
			if err == nil {
				row[f.Key] = v
				continue
			}

			if errors.Is(err, errDivByZero) || f.Required {
				record(computeFails, f.Key, rowNum, err)
			}
		}

		rows = append(rows, row)
	}

	if len(dropped) > 0 {
		diags.AddError(diagnostic.CodeRowsDropped,
			fmt.Sprintf("%d row(s) dropped because a required field could not be read (rows %s; first: %s)",
				len(dropped), rowList(dropped), firstDrop),
			name, "")
	}

	for _, f := range b.def.Fields {
		if ff, found := optional[f.Key]; found {
			diags.AddWarning(diagnostic.CodeCoercion,
				fmt.Sprintf("%d value(s) could not be read and were left empty (rows %s; first: %v)",
					len(ff.rows), rowList(ff.rows), ff.first),
				name, f.Key)
		}

		if ff, found := computeFails[f.Key]; found {
			diags.AddWarning(diagnostic.CodeComputeInputs,
				fmt.Sprintf("%d value(s) could not be computed (rows %s; first: %v)",
					len(ff.rows), rowList(ff.rows), ff.first),
				name, f.Key)
		}
	}

	return rows
}

func record(into map[string]*fieldFailures, key string, row int, err error) {
	ff, ok := into[key]
	if !ok {
		ff = &fieldFailures{first: err}
		into[key] = ff
	}

	ff.rows = append(ff.rows, row)
}

func rowList(rows []int) string {
	n := min(len(rows), maxReportedRows)

	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprint(rows[i])
	}

	s := strings.Join(parts, ", ")
	if len(rows) > n {
		s += ", ..."
	}

	return s
}
