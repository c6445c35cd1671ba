package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/schema"
)

func cashFlowFields() []schema.TargetField {
	return []schema.TargetField{
		{Key: "mes", Label: "Mês", Required: true, Type: schema.TypeDate},
		{Key: "entradas", Required: true, Type: schema.TypeNumber},
		{Key: "saidas", Required: true, Type: schema.TypeNumber},
		{Key: "saldo", Type: schema.TypeNumber, Compute: &schema.Computation{
			Op: schema.OpDifference, Inputs: []string{"entradas", "saidas"},
		}},
	}
}

func incomeFields() []schema.TargetField {
	return []schema.TargetField{
		{Key: "mes", Required: true, Type: schema.TypeDate, Synonyms: []string{"datum"}},
		{Key: "receita_bruta", Required: true, Type: schema.TypeNumber},
		{Key: "custos", Required: true, Type: schema.TypeNumber, Synonyms: []string{"custo total"}},
	}
}

func TestPropose_AllExact(t *testing.T) {
	r := Propose("Fluxo", []string{"Mês", "Entradas", "Saídas"}, cashFlowFields(), DefaultConfig())

	assert.False(t, r.NeedsUserReview)
	assert.Equal(t, "Fluxo", r.Sheet)
	assert.Equal(t, []string{"mes", "entradas", "saidas", "saldo"}, r.TargetColumns)
	assert.Empty(t, r.UnmappedSources)
	assert.Empty(t, r.UnmappedRequired)
	require.Len(t, r.SuggestedMappings, 3)

	for _, m := range r.SuggestedMappings {
		assert.Equal(t, 1.0, m.Confidence)
		assert.True(t, m.Required)
		assert.Equal(t, LabelAuto, Annotate(m, DefaultThreshold))
	}
}

func TestPropose_LowConfidence(t *testing.T) {
	r := Propose("DRE", []string{"Data", "Receita Bruta", "Custo Total"}, incomeFields(), DefaultConfig())

	assert.True(t, r.NeedsUserReview)
	assert.Empty(t, r.UnmappedRequired)

	m, ok := r.MappingFor("mes")
	require.True(t, ok)
	assert.Equal(t, "Data", m.Source.Header)
	assert.GreaterOrEqual(t, m.Confidence, 0.5)
	assert.Less(t, m.Confidence, DefaultThreshold)
	assert.Equal(t, LabelLow, Annotate(m, DefaultThreshold))
}

func TestPropose_MissingRequired(t *testing.T) {
	r := Propose("Fluxo", []string{"Mês", "Entradas", "Observações"}, cashFlowFields(), DefaultConfig())

	assert.True(t, r.NeedsUserReview)
	assert.Equal(t, []string{"saidas"}, r.UnmappedRequired)
	assert.Equal(t, []mapping.SourceColumn{{Header: "Observações", Position: 2}}, r.UnmappedSources)
}

func TestPropose_LooseDuplicates(t *testing.T) {
	headers := []string{"Mês", "Vlr Entrada", "Valor de Entrada", "Saídas"}

	r := Propose("Fluxo", headers, cashFlowFields(), DefaultConfig())

	assert.True(t, r.NeedsUserReview)

	m, ok := r.MappingFor("entradas")
	require.True(t, ok)
	assert.Equal(t, 1, m.Source.Position)
	assert.Equal(t, []mapping.SourceColumn{{Header: "Valor de Entrada", Position: 2}}, r.UnmappedSources)
}

func TestEvaluate(t *testing.T) {
	fields := []schema.TargetField{
		{Key: "a", Required: true},
		{Key: "b"},
	}
	col := func(pos int) mapping.SourceColumn { return mapping.SourceColumn{Position: pos} }

	tests := []struct {
		name     string
		mappings []mapping.ColumnMapping
		want     bool
	}{
		{"required mapped with confidence", []mapping.ColumnMapping{{Source: col(0), TargetKey: "a", Confidence: 0.9}}, false},
		{"threshold is inclusive", []mapping.ColumnMapping{{Source: col(0), TargetKey: "a", Confidence: 0.7}}, false},
		{"required missing", []mapping.ColumnMapping{{Source: col(0), TargetKey: "b", Confidence: 1}}, true},
		{"optional below threshold", []mapping.ColumnMapping{
			{Source: col(0), TargetKey: "a", Confidence: 1},
			{Source: col(1), TargetKey: "b", Confidence: 0.69},
		}, true},
		{"ignored entries do not count", []mapping.ColumnMapping{
			{Source: col(0), TargetKey: "a", Confidence: 1},
			{Source: col(1)},
		}, false},
		{"nothing mapped", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mapping.MappingResult{SuggestedMappings: tt.mappings}
			assert.Equal(t, tt.want, Evaluate(r, fields, DefaultThreshold))
		})
	}
}

func TestEvaluate_RequiredGating(t *testing.T) {
	fields := cashFlowFields()
	headerSets := [][]string{
		{"Mês"},
		{"Entradas", "Saídas"},
		{"Mes", "Entrada", "Saida"},
		{"Observações", "Total"},
		{},
	}

	for _, headers := range headerSets {
		r := Propose("s", headers, fields, DefaultConfig())
		if len(MissingRequired(r.SuggestedMappings, fields)) > 0 {
			assert.True(t, r.NeedsUserReview, "headers %v", headers)
		}
	}
}

func TestAnnotate_Ignored(t *testing.T) {
	assert.Equal(t, LabelIgnored, Annotate(mapping.ColumnMapping{}, DefaultThreshold))
}

func TestMissingRequired_Computed(t *testing.T) {
	fields := []schema.TargetField{
		{Key: "receita", Required: true, Type: schema.TypeNumber},
		{Key: "custos", Type: schema.TypeNumber},
		{Key: "margem", Required: true, Type: schema.TypePercentage, Compute: &schema.Computation{
			Op: schema.OpMargin, Inputs: []string{"receita", "custos"},
		}},
	}
	receita := mapping.ColumnMapping{Source: mapping.SourceColumn{Header: "Receita"}, TargetKey: "receita", Confidence: 1}
	custos := mapping.ColumnMapping{Source: mapping.SourceColumn{Header: "Custos", Position: 1}, TargetKey: "custos", Confidence: 1}

	assert.Equal(t, []string{"margem"}, MissingRequired([]mapping.ColumnMapping{receita}, fields))
	assert.Empty(t, MissingRequired([]mapping.ColumnMapping{receita, custos}, fields))
}

func TestEvaluate_ComputedRequired(t *testing.T) {
	fields := []schema.TargetField{
		{Key: "receita", Required: true, Type: schema.TypeNumber},
		{Key: "custos", Type: schema.TypeNumber},
		{Key: "margem", Required: true, Type: schema.TypePercentage, Compute: &schema.Computation{
			Op: schema.OpMargin, Inputs: []string{"receita", "custos"},
		}},
	}
	receita := mapping.ColumnMapping{Source: mapping.SourceColumn{Header: "Receita"}, TargetKey: "receita", Confidence: 1}
	custos := mapping.ColumnMapping{Source: mapping.SourceColumn{Header: "Custos", Position: 1}, TargetKey: "custos", Confidence: 1}

	tests := []struct {
		name     string
		mappings []mapping.ColumnMapping
		want     bool
	}{
		{"inputs mapped", []mapping.ColumnMapping{receita, custos}, false},
		{"input missing", []mapping.ColumnMapping{receita}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mapping.MappingResult{SuggestedMappings: tt.mappings}
			assert.Equal(t, tt.want, Evaluate(r, fields, DefaultThreshold))
		})
	}
}
