package sheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV decodes a delimited text file as a single-sheet workbook. The
// delimiter (comma, semicolon or tab) is guessed from the first line.
func ReadCSV(r io.Reader, name string) (*Workbook, error) {
	br := bufio.NewReader(r)

	first, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(string(first))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	raw, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	if len(raw) > 0 && len(raw[0]) > 0 {
		raw[0][0] = strings.TrimPrefix(raw[0][0], "\ufeff")
	}

	return &Workbook{Sheets: []Sheet{build(name, raw)}}, nil
}

func sniffDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")

	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}
