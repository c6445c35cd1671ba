package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostics collects findings of one import step so the user sees the
// complete picture in one pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Sheet identifies which sheet this relates to (if any).
	Sheet string
	// Field identifies which canonical field this relates to (if any).
	Field string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Diagnostic codes.
const (
	CodeEmptyFile        = "empty_file"
	CodeEmptySheet       = "empty_sheet"
	CodeMissingSheet     = "missing_sheet"
	CodeIgnoredSheet     = "ignored_sheet"
	CodeUnmappedRequired = "unmapped_required"
	CodeLowConfidence    = "low_confidence"
	CodeRowsDropped      = "rows_dropped"
	CodeCoercion         = "coercion_failed"
	CodeComputeInputs    = "compute_inputs_missing"
	CodeUnknownTarget    = "unknown_target"
	CodeDuplicateTarget  = "duplicate_target"
	CodeBadPosition      = "bad_position"
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, sheet, field string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Sheet:    sheet,
		Field:    field,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, sheet, field string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Sheet:    sheet,
		Field:    field,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, sheet, field string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Sheet:    sheet,
		Field:    field,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// ErrorMessages returns the formatted error diagnostics.
func (d *Diagnostics) ErrorMessages() []string {
	return messages(d.Errors)
}

// WarningMessages returns the formatted warning diagnostics.
func (d *Diagnostics) WarningMessages() []string {
	return messages(d.Warnings)
}

// Codes returns the codes of all diagnostics with the given severity.
func (d *Diagnostics) Codes(s Severity) []string {
	var list []Diagnostic

	switch s {
	case SeverityError:
		list = d.Errors
	case SeverityWarning:
		list = d.Warnings
	default:
		list = d.Infos
	}

	codes := make([]string, len(list))
	for i, x := range list {
		codes[i] = x.Code
	}

	return codes
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	return errors.New(strings.Join(d.ErrorMessages(), "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Sheet != "" {
		prefix = append(prefix, "["+d.Sheet+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

func messages(list []Diagnostic) []string {
	if len(list) == 0 {
		return nil
	}

	out := make([]string, len(list))
	for i, x := range list {
		out[i] = x.String()
	}

	return out
}
