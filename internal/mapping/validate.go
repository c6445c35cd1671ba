package mapping

import (
	"fmt"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/schema"
)

// Validate checks a sheet's pinned mapping against the uploaded header row and
// the sheet's target fields. It is a structural check only: unknown targets,
// duplicate targets and positions outside the header row.
func Validate(sm *SheetMapping, headers []string, fields []schema.TargetField) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if sm == nil {
		res.AddError("mapping_is_nil", "sheet mapping is nil", "", "")
		return res
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Key] = true
	}

	seenTargets := map[string]int{}
	seenPositions := map[int]bool{}

	for _, c := range sm.Columns {
		if c.Position < 0 || c.Position >= len(headers) {
			res.AddError(diagnostic.CodeBadPosition,
				fmt.Sprintf("column position %d outside header row of %d columns", c.Position, len(headers)),
				sm.Sheet, c.Target)

			continue
		}

		if seenPositions[c.Position] {
			res.AddError(diagnostic.CodeBadPosition,
				fmt.Sprintf("column position %d listed twice", c.Position), sm.Sheet, c.Target)
		}

		seenPositions[c.Position] = true

		if c.Header != "" && c.Header != headers[c.Position] {
			res.AddWarning("header_changed",
				fmt.Sprintf("column %d was %q when pinned, now %q", c.Position, c.Header, headers[c.Position]),
				sm.Sheet, c.Target)
		}

		if c.Target == "" {
			continue
		}

		if !known[c.Target] {
			res.AddError(diagnostic.CodeUnknownTarget,
				fmt.Sprintf("unknown target field %q", c.Target), sm.Sheet, c.Target)

			continue
		}

		if prev, dup := seenTargets[c.Target]; dup {
			res.AddError(diagnostic.CodeDuplicateTarget,
				fmt.Sprintf("target assigned to columns %d and %d", prev, c.Position), sm.Sheet, c.Target)

			continue
		}

		seenTargets[c.Target] = c.Position
	}

	return res
}
