package match

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetrecon/internal/mapping"
	"sheetrecon/internal/schema"
)

func targets(keys ...string) []schema.TargetField {
	fields := make([]schema.TargetField, len(keys))
	for i, k := range keys {
		fields[i] = schema.TargetField{Key: k, Required: true, Type: schema.TypeNumber}
	}

	return fields
}

func resolveHeaders(headers []string, fields []schema.TargetField) []mapping.ColumnMapping {
	return Resolve(Match(mapping.Columns(headers), fields, DefaultOptions()))
}

func TestResolve_ExactMatches(t *testing.T) {
	fields := targets("mes", "entradas", "saidas")

	got := resolveHeaders([]string{"Saídas", "Mês", "Entradas"}, fields)

	assert.Equal(t, []mapping.ColumnMapping{
		{Source: mapping.SourceColumn{Header: "Saídas", Position: 0}, TargetKey: "saidas", Confidence: 1, Required: true},
		{Source: mapping.SourceColumn{Header: "Mês", Position: 1}, TargetKey: "mes", Confidence: 1, Required: true},
		{Source: mapping.SourceColumn{Header: "Entradas", Position: 2}, TargetKey: "entradas", Confidence: 1, Required: true},
	}, got)
}

func TestResolve_StrongerMatchWins(t *testing.T) {
	fields := targets("entradas")
	headers := []string{"Entradas R", "Entrada"}

	got := resolveHeaders(headers, fields)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Source.Position)
	assert.InDelta(t, 0.875, got[0].Confidence, 0.0001)

	unmapped := Unassigned(mapping.Columns(headers), got)
	assert.Equal(t, []mapping.SourceColumn{{Header: "Entradas R", Position: 0}}, unmapped)
}

func TestResolve_TieGoesToLowerPosition(t *testing.T) {
	got := resolveHeaders([]string{"Obs", "Entradas", "Entradas"}, targets("entradas"))

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Source.Position, "duplicate headers are not merged")
}

func TestResolve_LooseDuplicates(t *testing.T) {
	headers := []string{"Mês", "Vlr Entrada", "Valor de Entrada"}

	got := resolveHeaders(headers, targets("mes", "entradas"))

	m, ok := mapping.Find(got, "entradas")
	require.True(t, ok)
	assert.Equal(t, "Vlr Entrada", m.Source.Header)
	assert.InDelta(t, 6.0/11.0, m.Confidence, 0.0001)

	assert.Equal(t,
		[]mapping.SourceColumn{{Header: "Valor de Entrada", Position: 2}},
		Unassigned(mapping.Columns(headers), got))
}

func TestResolve_ExactMatchNotStolenByFuzzy(t *testing.T) {
	// "Saídas" scores 0.5 against saldo, but its exact match to saidas is committed first.
	fields := []schema.TargetField{
		{Key: "saidas", Required: true},
		{Key: "saldo"},
	}

	got := resolveHeaders([]string{"Saídas"}, fields)

	require.Len(t, got, 1)
	assert.Equal(t, "saidas", got[0].TargetKey)
	assert.Equal(t, 1.0, got[0].Confidence)
}

func TestResolve_Deterministic(t *testing.T) {
	fields := targets("mes", "entradas", "saidas", "saldo", "receita", "custos")
	headers := []string{
		"Mes", "Entrada", "Entradas R", "Saida", "Saidas", "Saldo Final",
		"Receitas", "Custo", "Custos Fixos", "Mês",
	}

	candidates := Match(mapping.Columns(headers), fields, DefaultOptions())
	want := Resolve(candidates)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := make(CandidateList, len(candidates))
		copy(shuffled, candidates)
		rng.Shuffle(len(shuffled), shuffled.Swap)

		assert.Equal(t, want, Resolve(shuffled))
	}
}

func TestResolve_Bijective(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"duplicates", []string{"Entradas", "Entradas", "entradas", "ENTRADAS"}},
		{"near misses", []string{"Entrada", "Entradas R", "Vlr Entrada", "Saida", "Saidas", "Saldo"}},
		{"noise", []string{"", "---", "Obs", "Mes", "Mês", "mes."}},
	}

	fields := targets("mes", "entradas", "saidas", "saldo")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveHeaders(tt.headers, fields)

			assert.Empty(t, mapping.DuplicateTargets(got))

			positions := map[int]bool{}
			for _, m := range got {
				assert.False(t, positions[m.Source.Position], "column assigned twice")
				positions[m.Source.Position] = true
				assert.Positive(t, m.Confidence)
			}
		})
	}
}

func TestResolve_ExactMatchGuarantee(t *testing.T) {
	fields := []schema.TargetField{
		{Key: "receita_bruta", Synonyms: []string{"faturamento"}},
		{Key: "custos", Synonyms: []string{"custo total"}},
	}

	got := resolveHeaders([]string{"Faturamento", "Custo Total"}, fields)

	require.Len(t, got, 2)
	for _, m := range got {
		assert.Equal(t, 1.0, m.Confidence)
	}
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil))
	assert.Empty(t, resolveHeaders(nil, targets("mes")))
}
