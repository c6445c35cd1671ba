package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetrecon/internal/schema"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"100", "100"},
		{"  42  ", "42"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"R$ 1.234,56", "1234.56"},
		{"US$ 1,000.00", "1000"},
		{"€ 12,5", "12.5"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"1 234 567,8", "1234567.8"},
		{"1 500", "1500"},
		{"(1.500,00)", "-1500"},
		{"150-", "-150"},
		{"-R$ 10", "-10"},
		{"+7", "7"},
		{"0,5", "0.5"},
		{"R$ 12.500", "12500"},
		{"1.500", "1500"},
		{"1,500", "1500"},
		{"R$ 999.999", "999999"},
		{"0.125", "0.125"},
		{"0,750", "0.75"},
		{"1.5000", "1.5"},
		{"1234.567", "1234.567"},
		{"3.14", "3.14"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseNumber_Errors(t *testing.T) {
	_, err := ParseNumber("   ")
	require.ErrorIs(t, err, ErrEmpty)

	for _, in := range []string{"abc", "12abc", "1.2.3,4,5", "--"} {
		_, err := ParseNumber(in)
		assert.ErrorIs(t, err, ErrNotNumber, in)
	}
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.125", "12.5"},
		{"12.5", "12.5"},
		{"12,5%", "12.5"},
		{"1", "100"},
		{"0", "0"},
		{"0,5%", "50"},
		{"150", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePercentage(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParsePercentage("n/a")
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15", day(2024, time.March, 15)},
		{"15/03/2024", day(2024, time.March, 15)},
		{"2024/03/15", day(2024, time.March, 15)},
		{"03/2024", day(2024, time.March, 1)},
		{"2024-03", day(2024, time.March, 1)},
		{"jan/2024", day(2024, time.January, 1)},
		{"Janeiro de 2024", day(2024, time.January, 1)},
		{"Jan 2024", day(2024, time.January, 1)},
		{"jan/24", day(2024, time.January, 1)},
		{"Março 2023", day(2023, time.March, 1)},
		{"September 2023", day(2023, time.September, 1)},
		{"dez-23", day(2023, time.December, 1)},
		{"45292", day(2024, time.January, 1)},
		{"2024", day(2024, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	_, err := ParseDate("")
	require.ErrorIs(t, err, ErrEmpty)

	for _, in := range []string{"soon", "foo 2024", "jan 202", "-3"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrNotDate, in)
	}
}

func TestCoerce(t *testing.T) {
	v, err := Coerce("  Loja Centro ", schema.TypeString)
	require.NoError(t, err)
	assert.Equal(t, "Loja Centro", v)

	_, err = Coerce(" ", schema.TypeString)
	require.ErrorIs(t, err, ErrEmpty)

	v, err = Coerce("1.000,00", schema.TypeNumber)
	require.NoError(t, err)
	assert.IsType(t, decimal.Decimal{}, v)

	v, err = Coerce("2024-01-31", schema.TypeDate)
	require.NoError(t, err)
	assert.IsType(t, time.Time{}, v)
}
