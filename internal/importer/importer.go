// Package importer runs an upload through the pipeline: validation and
// proposal, review, completeness check and transformation. It is the only
// layer that logs.
package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/mapping"
	"sheetrecon/internal/review"
	"sheetrecon/internal/schema"
	"sheetrecon/internal/session"
	"sheetrecon/internal/sheet"
	"sheetrecon/internal/transform"
)

var (
	// ErrInvalidFile is returned when validation finds hard errors.
	ErrInvalidFile = errors.New("file failed validation")
	// ErrIncomplete is returned when required fields are still unmapped at completion.
	ErrIncomplete = errors.New("required fields are not mapped")
	// ErrLockMismatch is returned when a lock file cannot be applied to the upload.
	ErrLockMismatch = errors.New("mapping lock file does not fit the file")
	// ErrRowsRejected is returned when rows were dropped because a required
	// value could not be read.
	ErrRowsRejected = errors.New("rows rejected")
)

// Report summarizes a completed import.
type Report struct {
	SessionID   string
	Page        string
	Rows        map[string]int
	Diagnostics *diagnostic.Diagnostics
}

// Valid returns true when no hard error was recorded.
func (r Report) Valid() bool {
	return r.Diagnostics == nil || r.Diagnostics.IsValid()
}

// Importer binds a schema registry and review settings.
type Importer struct {
	registry *schema.Registry
	cfg      review.Config
	logger   *zap.Logger
}

// New creates an Importer. A nil logger disables logging.
func New(registry *schema.Registry, cfg review.Config, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Importer{registry: registry, cfg: cfg, logger: logger}
}

// Open reads an uploaded file. Failing to read it is the only error that
// stops an upload before validation.
func (im *Importer) Open(ctx context.Context, path string) (*sheet.Workbook, error) {
	log := im.logger.With(zap.String("file", path))

	wb, err := sheet.Open(ctx, path)
	if err != nil {
		log.Error("cannot read upload", zap.Error(err))
		return nil, err
	}

	log.Debug("upload read", zap.Strings("sheets", wb.Names()))

	return wb, nil
}

// Inspect validates a workbook against a page and proposes the column mapping
// of every bound sheet.
func (im *Importer) Inspect(pageID string, wb *sheet.Workbook) (transform.ValidationResult, error) {
	page, err := im.registry.Page(pageID)
	if err != nil {
		return transform.ValidationResult{}, err
	}

	log := im.logger.With(zap.String("page", pageID))

	res := transform.Validate(wb, page, im.cfg)

	for _, r := range res.Results() {
		log.Debug("sheet proposal",
			zap.String("sheet", r.Sheet),
			zap.Int("mapped", len(r.SuggestedMappings)),
			zap.Strings("unmapped_required", r.UnmappedRequired),
			zap.Bool("needs_review", r.NeedsUserReview))
	}

	log.Info("upload validated",
		zap.Bool("valid", res.Valid),
		zap.Bool("needs_review", res.NeedsUserReview),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)))

	return res, nil
}

// Begin starts a review session over a validation result. The session is
// already Complete when no sheet needs review.
func (im *Importer) Begin(res transform.ValidationResult) (session.Session, error) {
	if !res.Valid {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidFile, res.Errors)
	}

	s, err := session.New(res.Results()).Start()
	if err != nil {
		return s, err
	}

	im.logger.Info("review started",
		zap.String("session", s.ID()),
		zap.Stringer("state", s.State()),
		zap.Strings("pending", s.Pending()))

	return s, nil
}

// ApplyLock confirms every pending sheet of a session from a mapping lock
// file. Each pinned sheet is checked against the uploaded header first.
func (im *Importer) ApplyLock(pageID string, s session.Session, lock *mapping.File) (session.Session, error) {
	page, err := im.registry.Page(pageID)
	if err != nil {
		return s, err
	}

	if lock.Page != "" && lock.Page != pageID {
		return s, fmt.Errorf("%w: pinned for page %q, not %q", ErrLockMismatch, lock.Page, pageID)
	}

	for s.State() == session.Reviewing {
		cur, _ := s.Current()

		sm, ok := lock.Sheet(cur.Sheet)
		if !ok {
			return s, fmt.Errorf("%w: no entry for sheet %q", ErrLockMismatch, cur.Sheet)
		}

		def, ok := page.SheetFor(cur.Sheet)
		if !ok {
			return s, fmt.Errorf("%w: sheet %q", schema.ErrUnknownSheet, cur.Sheet)
		}

		headers := make([]string, len(cur.SourceColumns))
		for i, c := range cur.SourceColumns {
			headers[i] = c.Header
		}

		diags := mapping.Validate(sm, headers, def.Fields)
		for _, w := range diags.Warnings {
			im.logger.Warn("lock file", zap.String("session", s.ID()), zap.String("detail", w.String()))
		}

		if err := diags.Error(); err != nil {
			return s, fmt.Errorf("%w: %w", ErrLockMismatch, err)
		}

		required := map[string]bool{}
		for _, f := range def.Fields {
			required[f.Key] = f.Required
		}

		next, err := s.Confirm(sm.Mappings(required))
		if err != nil {
			return s, err
		}

		im.logger.Info("sheet confirmed from lock file", zap.String("session", s.ID()), zap.String("sheet", cur.Sheet))

		s = next
	}

	return s, nil
}

// Complete checks that every required field is mapped and transforms the
// workbook through the session's final mappings. Rows dropped for an
// unreadable required value fail the import with ErrRowsRejected; the
// surviving rows and the Report are still returned for display.
func (im *Importer) Complete(pageID string, wb *sheet.Workbook, s session.Session) (transform.Dataset, Report, error) {
	report := Report{SessionID: s.ID(), Page: pageID, Rows: map[string]int{}}

	page, err := im.registry.Page(pageID)
	if err != nil {
		return nil, report, err
	}

	log := im.logger.With(zap.String("session", s.ID()), zap.String("page", pageID))

	final, err := s.Finalize()
	if err != nil {
		return nil, report, err
	}

	report.Diagnostics = transform.CheckRequired(wb, page, final)
	if report.Diagnostics.HasErrors() {
		log.Warn("import blocked", zap.Strings("errors", report.Diagnostics.ErrorMessages()))
		return nil, report, fmt.Errorf("%w: %w", ErrIncomplete, report.Diagnostics.Error())
	}

	ds, diags := transform.Transform(wb, page, final)
	report.Diagnostics.Merge(*diags)

	for name, rows := range ds {
		report.Rows[name] = len(rows)
	}

	for _, w := range report.Diagnostics.WarningMessages() {
		log.Warn("transform", zap.String("detail", w))
	}

	if !report.Valid() {
		log.Warn("import blocked", zap.Strings("errors", report.Diagnostics.ErrorMessages()))
		return ds, report, fmt.Errorf("%w: %w", ErrRowsRejected, report.Diagnostics.Error())
	}

	log.Info("import complete", zap.Any("rows", report.Rows))

	return ds, report, nil
}
