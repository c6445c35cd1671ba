package transform

import (
	"errors"

	"github.com/shopspring/decimal"

	"sheetrecon/internal/schema"
)

var (
	errMissingInput = errors.New("missing input")
	errDivByZero    = errors.New("division by zero")
)

// Compute evaluates a computed field over the values already set on a row.
// It fails when any input is absent; the field is then left unset.
func Compute(c *schema.Computation, row Row) (decimal.Decimal, error) {
	vals := make([]decimal.Decimal, len(c.Inputs))

	for i, key := range c.Inputs {
		d, ok := row[key].(decimal.Decimal)
		if !ok {
			return decimal.Decimal{}, errMissingInput
		}

		vals[i] = d
	}

	switch c.Op {
	case schema.OpSum:
		total := decimal.Zero
		for _, v := range vals {
			total = total.Add(v)
		}

		return total, nil
	case schema.OpDifference:
		total := vals[0]
		for _, v := range vals[1:] {
			total = total.Sub(v)
		}

		return total, nil
	case schema.OpRatio:
		if vals[1].IsZero() {
			return decimal.Decimal{}, errDivByZero
		}

		return vals[0].Div(vals[1]), nil
	case schema.OpMargin:
		if vals[0].IsZero() {
			return decimal.Decimal{}, errDivByZero
		}

		return vals[0].Sub(vals[1]).Div(vals[0]).Mul(hundred), nil
	default:
		return decimal.Decimal{}, errors.New("unknown operator " + string(c.Op))
	}
}
