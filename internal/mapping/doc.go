// Package mapping holds the column mapping data model shared by the matching,
// review and transform stages, plus the YAML lock file that pins a reviewed
// mapping so later uploads of the same layout import without review.
//
// # Lock file overview
//
//	version: "1"
//	page: fluxo-caixa
//	sheets:
//	  - sheet: Fluxo
//	    columns:
//	      - position: 0
//	        header: Mês
//	        target: mes
//	        confidence: 1
//	      - position: 3
//	        header: Observações
//	        # no target: the column is ignored
//
// A column entry without target means "ignore this column". Within one sheet
// no two entries may share a target.
package mapping
