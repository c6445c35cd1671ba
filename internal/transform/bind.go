package transform

import (
	"fmt"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/normalize"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/sheet"
)

// binding pairs an uploaded sheet with the template sheet it is read as.
type binding struct {
	sheet *sheet.Sheet
	def   *schema.SheetDef
}

// bind pairs workbook sheets with the page's sheet definitions. Names match
// after normalization; a page with a single definition takes the first
// workbook sheet when no name matches. Workbook sheets without a definition
// are reported and skipped; missing definitions are errors unless optional.
func bind(wb *sheet.Workbook, page *schema.Page, diags *diagnostic.Diagnostics) []binding {
	byDef := make([]int, len(page.Sheets))
	for i := range byDef {
		byDef[i] = -1
	}

	taken := make([]bool, len(wb.Sheets))

	for d := range page.Sheets {
		token := normalize.Header(page.Sheets[d].Name)
		for w := range wb.Sheets {
			if !taken[w] && normalize.Header(wb.Sheets[w].Name) == token {
				byDef[d], taken[w] = w, true
				break
			}
		}
	}

	if len(page.Sheets) == 1 && byDef[0] < 0 {
		for w := range wb.Sheets {
			if !taken[w] {
				byDef[0], taken[w] = w, true
				break
			}
		}
	}

	for d, w := range byDef {
		if w >= 0 {
			continue
		}

		def := &page.Sheets[d]
		if def.Optional {
			diags.AddInfo(diagnostic.CodeMissingSheet, "optional sheet not present", def.Name, "")
		} else {
			diags.AddError(diagnostic.CodeMissingSheet,
				fmt.Sprintf("required sheet %q not found in file", def.Name), def.Name, "")
		}
	}

	var out []binding

	for w := range wb.Sheets {
		if !taken[w] {
			diags.AddWarning(diagnostic.CodeIgnoredSheet, "sheet does not belong to this page and is ignored",
				wb.Sheets[w].Name, "")

			continue
		}

		for d, bw := range byDef {
			if bw == w {
				out = append(out, binding{sheet: &wb.Sheets[w], def: &page.Sheets[d]})
			}
		}
	}

	return out
}
