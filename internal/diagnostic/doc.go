// Package diagnostic provides structured errors, warnings and notes
// collected while reconciling an uploaded spreadsheet.
//
// Key capabilities:
//   - Empty file and empty sheet errors
//   - Unmapped required field reports
//   - Low-confidence match warnings
//   - Row-level coercion failures aggregated per sheet
package diagnostic
