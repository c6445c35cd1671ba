package transform

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sheetrecon/internal/normalize"
	"sheetrecon/internal/schema"
)

// Coercion errors.
var (
	ErrEmpty     = errors.New("empty value")
	ErrNotNumber = errors.New("not a number")
	ErrNotDate   = errors.New("not a date")
)

var (
	hundred = decimal.NewFromInt(100)

	currencyMarks = []string{"R$", "US$", "$", "€", "£", "BRL", "USD", "EUR"}
	plainNumber   = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

	// excelEpoch is day zero of the 1900 date system (with the 1900 leap-year bug folded in).
	excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
)

// Coerce converts raw cell text to the Go value of a field type:
// decimal.Decimal for numbers and percentages, time.Time for dates and the
// trimmed text for strings.
func Coerce(raw string, t schema.ValueType) (any, error) {
	switch t {
	case schema.TypeNumber:
		return ParseNumber(raw)
	case schema.TypePercentage:
		return ParsePercentage(raw)
	case schema.TypeDate:
		return ParseDate(raw)
	default:
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil, ErrEmpty
		}

		return s, nil
	}
}

// ParseNumber reads a number written with currency marks, thousands
// separators, a decimal comma or point, and negatives as a leading or
// trailing minus or parentheses.
//
// Separator rule: when both "." and "," occur, the last one is the decimal
// separator. When only one kind occurs, repeated occurrences are thousands
// separators. A single occurrence is a thousands separator when exactly three
// digits follow it and the integer part has one to three digits without a
// leading zero ("12.500" -> 12500, "1,500" -> 1500); otherwise it is the
// decimal separator ("0.125", "12,5", "1.5000").
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, ErrEmpty
	}

	neg := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg, s = true, s[1:len(s)-1]
	}

	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'', '\t':
			return -1
		}

		return r
	}, s)

	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = !neg, s[1:]
	case strings.HasSuffix(s, "-"):
		neg, s = !neg, s[:len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	s = normalizeSeparators(s)

	if !plainNumber.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNotNumber, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNotNumber, raw)
	}

	if neg {
		d = d.Neg()
	}

	return d, nil
}

func normalizeSeparators(s string) string {
	dots, commas := strings.Count(s, "."), strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		if isThousands(s, ",") {
			return strings.Replace(s, ",", "", 1)
		}

		return strings.Replace(s, ",", ".", 1)
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots == 1:
		if isThousands(s, ".") {
			return strings.Replace(s, ".", "", 1)
		}

		return s
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}

// isThousands reports whether the single separator sep in s groups
// thousands: one to three leading digits without a leading zero, then
// exactly three digits.
func isThousands(s, sep string) bool {
	intPart, frac, _ := strings.Cut(s, sep)

	return len(frac) == 3 && allDigits(frac) &&
		len(intPart) >= 1 && len(intPart) <= 3 && allDigits(intPart) && intPart[0] != '0'
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// ParsePercentage reads a percentage as a value in percent units. A "%"
// sign is dropped. Values at most 1 are fractions and are multiplied by 100
// ("0.125" -> 12.5, and "1" -> 100); larger values are already percentages
// ("12.5" -> 12.5). The rule applies whether or not the sign was present.
func ParsePercentage(raw string) (decimal.Decimal, error) {
	d, err := ParseNumber(strings.ReplaceAll(raw, "%", ""))
	if err != nil {
		return decimal.Decimal{}, err
	}

	if d.LessThanOrEqual(decimal.NewFromInt(1)) {
		d = d.Mul(hundred)
	}

	return d, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"01/2006",
	"1/2006",
	"01-2006",
	"2006-01",
	"2006/01",
}

var months = map[string]time.Month{
	"jan": time.January, "janeiro": time.January, "january": time.January,
	"fev": time.February, "fevereiro": time.February, "feb": time.February, "february": time.February,
	"mar": time.March, "marco": time.March, "march": time.March,
	"abr": time.April, "abril": time.April, "apr": time.April, "april": time.April,
	"mai": time.May, "maio": time.May, "may": time.May,
	"jun": time.June, "junho": time.June, "june": time.June,
	"jul": time.July, "julho": time.July, "july": time.July,
	"ago": time.August, "agosto": time.August, "aug": time.August, "august": time.August,
	"set": time.September, "setembro": time.September, "sep": time.September,
	"sept": time.September, "september": time.September,
	"out": time.October, "outubro": time.October, "oct": time.October, "october": time.October,
	"nov": time.November, "novembro": time.November, "november": time.November,
	"dez": time.December, "dezembro": time.December, "dec": time.December, "december": time.December,
}

// ParseDate reads a date written in one of the common layouts, as a month
// name and year in Portuguese or English ("jan/2024", "Janeiro de 2024",
// "Mar-24"), as a bare year, or as an Excel serial number.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	if t, ok := parseMonthYear(s); ok {
		return t, nil
	}

	if t, ok := parseSerial(s); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrNotDate, raw)
}

func parseMonthYear(s string) (time.Time, bool) {
	var parts []string

	for _, tok := range normalize.Tokens(s) {
		if tok != "de" && tok != "of" {
			parts = append(parts, tok)
		}
	}

	if len(parts) != 2 {
		return time.Time{}, false
	}

	m, ok := months[parts[0]]
	if !ok {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}

	switch len(parts[1]) {
	case 2:
		year += 2000
	case 4:
	default:
		return time.Time{}, false
	}

	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC), true
}

// parseSerial reads a bare year (1900-2200) or an Excel serial day number.
func parseSerial(s string) (time.Time, bool) {
	if len(s) == 4 {
		if year, err := strconv.Atoi(s); err == nil && year >= 1900 && year <= 2200 {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > 2958465 {
		return time.Time{}, false
	}

	days := int(f)
	secs := int((f - float64(days)) * 86400)

	return excelEpoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second), true
}
