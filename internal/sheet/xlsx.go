package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX decodes every sheet of an XLSX workbook, in workbook order.
// Cells are read raw, so dates arrive as serial numbers and numbers without
// display formatting.
func ReadXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %w", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", ErrUnreadable, name, err)
		}

		wb.Sheets = append(wb.Sheets, build(name, rows))
	}

	return wb, nil
}
