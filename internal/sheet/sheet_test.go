package sheet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header []string
		rows   [][]string
	}{
		{
			name:   "comma",
			input:  "Mês,Entradas,Saídas\njan/2024,100,40\n",
			header: []string{"Mês", "Entradas", "Saídas"},
			rows:   [][]string{{"jan/2024", "100", "40"}},
		},
		{
			name:   "semicolon with decimal comma",
			input:  "Mês;Entradas;Saídas\njan/2024;1.234,56;40\n",
			header: []string{"Mês", "Entradas", "Saídas"},
			rows:   [][]string{{"jan/2024", "1.234,56", "40"}},
		},
		{
			name:   "byte order mark and blank rows",
			input:  "\ufeff\n,,\nMês,Entradas,\n\njan/2024,100\nfev/2024,200,extra\n",
			header: []string{"Mês", "Entradas"},
			rows:   [][]string{{"jan/2024", "100"}, {"fev/2024", "200"}},
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb, err := ReadCSV(strings.NewReader(tt.input), "upload")
			require.NoError(t, err)
			require.Len(t, wb.Sheets, 1)

			s := wb.Sheets[0]
			assert.Equal(t, "upload", s.Name)
			assert.Equal(t, tt.header, s.Header)
			assert.Equal(t, tt.rows, s.Rows)
		})
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	wb, err := ReadCSV(strings.NewReader("Mês,Entradas\n"), "upload")
	require.NoError(t, err)

	assert.Equal(t, []string{"Mês", "Entradas"}, wb.Sheets[0].Header)
	assert.Empty(t, wb.Sheets[0].Rows)
}

func TestSheet_Cell(t *testing.T) {
	s := Sheet{Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}

	assert.Equal(t, "2", s.Cell(0, 1))
	assert.Equal(t, "", s.Cell(0, 2))
	assert.Equal(t, "", s.Cell(1, 0))
	assert.Equal(t, "", s.Cell(-1, 0))
}

func writeXLSX(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetSheetName("Sheet1", "Fluxo"))
	require.NoError(t, f.SetSheetRow("Fluxo", "A1", &[]any{"Mês", "Entradas", "Saídas"}))
	require.NoError(t, f.SetSheetRow("Fluxo", "A2", &[]any{"jan/2024", 1500.5, 700}))

	_, err := f.NewSheet("Vazia")
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	wb, err := ReadXLSX(strings.NewReader(string(writeXLSX(t))))
	require.NoError(t, err)

	assert.Equal(t, []string{"Fluxo", "Vazia"}, wb.Names())

	s, ok := wb.Sheet("Fluxo")
	require.True(t, ok)
	assert.Equal(t, []string{"Mês", "Entradas", "Saídas"}, s.Header)
	assert.Equal(t, [][]string{{"jan/2024", "1500.5", "700"}}, s.Rows)

	empty, ok := wb.Sheet("Vazia")
	require.True(t, ok)
	assert.Empty(t, empty.Header)
	assert.Empty(t, empty.Rows)

	_, ok = wb.Sheet("Nope")
	assert.False(t, ok)
}

func TestReadXLSX_Garbage(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "fluxo.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, writeXLSX(t), 0o644))

	csvPath := filepath.Join(dir, "fluxo.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Mês,Entradas\njan/2024,1\n"), 0o644))

	wb, err := Open(context.Background(), xlsxPath)
	require.NoError(t, err)
	assert.Len(t, wb.Sheets, 2)

	wb, err = Open(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"fluxo"}, wb.Names())

	_, err = Open(context.Background(), filepath.Join(dir, "fluxo.pdf"))
	assert.ErrorIs(t, err, ErrUnreadable)

	txtPath := filepath.Join(dir, "notes.ods")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = Open(context.Background(), txtPath)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestOpen_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxo.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The read may win the race with cancellation; either outcome is clean.
	wb, err := Open(ctx, path)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, wb)
	}
}
