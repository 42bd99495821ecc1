package matcher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// AmountRange bounds-checks a field value against [Min, Max]. All
// comparisons use exact decimal arithmetic (github.com/shopspring/decimal)
// — never binary floats.
type AmountRange struct {
	Field         string
	Coerce        Coerce // CoerceInt (minor units) or CoerceDecimal (decimal string)
	Scale         int
	Min           *decimal.Decimal
	Max           *decimal.Decimal
	MinInclusive  bool
	MaxInclusive  bool
	minStr        string
	maxStr        string
}

// NewAmountRange parses minStr/maxStr (empty means unbounded) to exact
// decimals at compile time. Returns an error if either bound fails to
// parse, min > max when both are present, or scale < 0.
func NewAmountRange(field string, coerce Coerce, scale int, minStr, maxStr string, minIncl, maxIncl bool) (*AmountRange, error) {
	if scale < 0 {
		return nil, regexErr("amount_range scale must be >= 0")
	}
	var min, max *decimal.Decimal
	if minStr != "" {
		d, err := decimal.NewFromString(minStr)
		if err != nil {
			return nil, err
		}
		min = &d
	}
	if maxStr != "" {
		d, err := decimal.NewFromString(maxStr)
		if err != nil {
			return nil, err
		}
		max = &d
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return nil, regexErr("amount_range min must be <= max")
	}
	return &AmountRange{
		Field: field, Coerce: coerce, Scale: scale,
		Min: min, Max: max, MinInclusive: minIncl, MaxInclusive: maxIncl,
		minStr: minStr, maxStr: maxStr,
	}, nil
}

func (m *AmountRange) Evaluate(ctx reqctx.Context, _ time.Time) bool {
	v, ok := ctx.Lookup(m.Field)
	if !ok {
		return false
	}

	amount, ok := m.decimalAmount(v)
	if !ok {
		return false
	}

	if m.Min != nil {
		if m.MinInclusive {
			if amount.LessThan(*m.Min) {
				return false
			}
		} else if amount.LessThanOrEqual(*m.Min) {
			return false
		}
	}
	if m.Max != nil {
		if m.MaxInclusive {
			if amount.GreaterThan(*m.Max) {
				return false
			}
		} else if amount.GreaterThanOrEqual(*m.Max) {
			return false
		}
	}
	return true
}

// decimalAmount converts the raw field value into the decimal amount to
// compare, per m.Coerce.
func (m *AmountRange) decimalAmount(v reqctx.Scalar) (decimal.Decimal, bool) {
	switch m.Coerce {
	case CoerceInt:
		minorUnits, ok := v.AsInt()
		if !ok {
			return decimal.Decimal{}, false
		}
		divisor := decimal.New(1, int32(m.Scale))
		return decimal.NewFromInt(minorUnits).Div(divisor), true
	case CoerceDecimal:
		str, ok := v.AsString(false)
		if !ok {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(str)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func (m *AmountRange) ToJSON() map[string]any {
	out := map[string]any{
		"type":          "AMOUNT_RANGE",
		"field":         m.Field,
		"coerce":        string(m.Coerce),
		"scale":         m.Scale,
		"min_inclusive": m.MinInclusive,
		"max_inclusive": m.MaxInclusive,
	}
	if m.minStr != "" {
		out["min"] = m.minStr
	}
	if m.maxStr != "" {
		out["max"] = m.maxStr
	}
	return out
}
