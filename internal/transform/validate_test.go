package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetrecon/internal/diagnostic"
	"sheetrecon/internal/mapping"
	"sheetrecon/internal/review"
	"sheetrecon/internal/sheet"
)

func TestValidate_SheetBinding(t *testing.T) {
	dre := sheet.Sheet{
		Name:   "dre",
		Header: []string{"Mês", "Receita Bruta", "Custos"},
		Rows:   [][]string{{"jan/2024", "10", "5"}},
	}

	tests := []struct {
		name     string
		sheets   []sheet.Sheet
		valid    bool
		errors   []string
		warnings []string
		order    []string
	}{
		{
			name:   "exact sheet set",
			sheets: []sheet.Sheet{dre, {Name: "Metas", Header: []string{"Meta"}, Rows: [][]string{{"0,3"}}}},
			valid:  true,
			order:  []string{"dre", "Metas"},
		},
		{
			name:     "extra sheet ignored",
			sheets:   []sheet.Sheet{{Name: "Rascunho", Header: []string{"x"}, Rows: [][]string{{"1"}}}, dre},
			valid:    true,
			warnings: []string{diagnostic.CodeIgnoredSheet},
			order:    []string{"dre"},
		},
		{
			name:     "optional sheet empty",
			sheets:   []sheet.Sheet{dre, {Name: "Metas", Header: []string{"Meta"}}},
			valid:    true,
			warnings: []string{diagnostic.CodeEmptySheet},
			order:    []string{"dre"},
		},
		{
			name:   "required sheet missing",
			sheets: []sheet.Sheet{{Name: "Metas", Header: []string{"Meta"}, Rows: [][]string{{"1"}}}},
			errors: []string{diagnostic.CodeMissingSheet},
			order:  []string{"Metas"},
		},
		{
			name:   "required sheet empty",
			sheets: []sheet.Sheet{{Name: "DRE", Header: dre.Header}, {Name: "Metas", Header: []string{"Meta"}, Rows: [][]string{{"1"}}}},
			errors: []string{diagnostic.CodeEmptySheet},
			order:  []string{"Metas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(&sheet.Workbook{Sheets: tt.sheets}, incomePage(), review.DefaultConfig())

			assert.Equal(t, tt.valid, res.Valid, res.Errors)
			assert.Equal(t, tt.order, res.SheetOrder)
			assert.Len(t, res.Errors, len(tt.errors))

			for _, code := range tt.errors {
				assert.Contains(t, res.Diagnostics.Codes(diagnostic.SeverityError), code)
			}

			for _, code := range tt.warnings {
				assert.Contains(t, res.Diagnostics.Codes(diagnostic.SeverityWarning), code)
			}
		})
	}
}

func TestValidate_UnmappedRequiredIsWarning(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{
		Name:   "Fluxo",
		Header: []string{"Mês", "Entradas"},
		Rows:   [][]string{{"jan/2024", "1"}},
	}}}

	res := Validate(wb, cashFlowPage(), review.DefaultConfig())
	assert.True(t, res.Valid)
	assert.True(t, res.NeedsUserReview)
	assert.Equal(t, []string{diagnostic.CodeUnmappedRequired}, res.Diagnostics.Codes(diagnostic.SeverityWarning))
	assert.Equal(t, "saidas", res.Diagnostics.Warnings[0].Field)

	final := map[string][]mapping.ColumnMapping{"Fluxo": res.MappingResults["Fluxo"].SuggestedMappings}
	diags := CheckRequired(wb, cashFlowPage(), final)
	require.False(t, diags.IsValid())
	assert.Equal(t, []string{diagnostic.CodeUnmappedRequired}, diags.Codes(diagnostic.SeverityError))
}

func TestCheckRequired_Computed(t *testing.T) {
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{{
		Name:   "DRE",
		Header: []string{"Mês", "Receita", "Custos"},
		Rows:   [][]string{{"jan/2024", "1", "1"}},
	}}}

	full := map[string][]mapping.ColumnMapping{"DRE": {
		col("Mês", 0, "mes"), col("Receita", 1, "receita_bruta"), col("Custos", 2, "custos"),
	}}
	assert.True(t, CheckRequired(wb, incomePage(), full).IsValid())

	partial := map[string][]mapping.ColumnMapping{"DRE": {col("Mês", 0, "mes"), col("Receita", 1, "receita_bruta")}}
	diags := CheckRequired(wb, incomePage(), partial)
	assert.Equal(t, []string{diagnostic.CodeUnmappedRequired}, diags.Codes(diagnostic.SeverityError))
	assert.Equal(t, []string{diagnostic.CodeComputeInputs}, diags.Codes(diagnostic.SeverityWarning))
}
