// Package sheet decodes uploaded spreadsheet files into an ordered set of
// sheets, each a header row plus data rows of raw cell text.
package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrUnreadable is returned when a file cannot be decoded at all.
var ErrUnreadable = errors.New("cannot read spreadsheet")

// Sheet is one tab of a workbook. Rows are padded or cut to the header width.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Cell returns the raw text at (row, position), or "" when out of range.
func (s *Sheet) Cell(row, position int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}

	r := s.Rows[row]
	if position < 0 || position >= len(r) {
		return ""
	}

	return r[position]
}

// Workbook is the ordered list of sheets of an uploaded file.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	i := slices.IndexFunc(w.Sheets, func(s Sheet) bool { return s.Name == name })
	if i < 0 {
		return nil, false
	}

	return &w.Sheets[i], true
}

// Names returns the sheet names in workbook order.
func (w *Workbook) Names() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}

	return names
}

// Open reads a workbook from disk, choosing the decoder by file extension.
// Reading honors ctx; decoding runs to completion once the bytes are in memory.
func Open(ctx context.Context, path string) (*Workbook, error) {
	data, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	case ".csv", ".txt":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return ReadCSV(bytes.NewReader(data), name)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrUnreadable, ext)
	}
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	type result struct {
		data []byte
		err  error
	}

	done := make(chan result, 1)

	go func() {
		data, err := io.ReadAll(f)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, r.err)
		}

		return r.data, nil
	}
}

// build turns raw rows into a Sheet: the first non-empty row is the header,
// fully empty rows are dropped and every row is fitted to the header width.
func build(name string, raw [][]string) Sheet {
	s := Sheet{Name: name}

	start := slices.IndexFunc(raw, func(r []string) bool { return !isBlank(r) })
	if start < 0 {
		return s
	}

	s.Header = trimTrailingBlank(raw[start])
	width := len(s.Header)

	for _, r := range raw[start+1:] {
		if isBlank(r) {
			continue
		}

		row := make([]string, width)
		copy(row, r)
		s.Rows = append(s.Rows, row)
	}

	return s
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func trimTrailingBlank(r []string) []string {
	end := len(r)
	for end > 0 && strings.TrimSpace(r[end-1]) == "" {
		end--
	}

	return slices.Clone(r[:end])
}
