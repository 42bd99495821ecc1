package matcher

import (
	"time"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// ValueIn tests field membership against a precompiled set of coerced
// values.
type ValueIn struct {
	Field  string
	Coerce Coerce
	Values []any // original declared values, untouched, preserved for ToJSON
	set    map[any]struct{}
}

// NewValueIn precompiles values into a hash set under the given coercion.
// Declared values are coerced the same way a ctx value would be, so
// e.g. coerce=lower-str normalizes both sides identically. Values keeps
// each declared value exactly as supplied (the decoded JSON type), so
// ToJSON renders coerce=null sets back in their native scalar type
// instead of collapsing everything to a string.
func NewValueIn(field string, values []any, coerce Coerce) *ValueIn {
	set := make(map[any]struct{}, len(values))
	declared := make([]any, len(values))
	copy(declared, values)
	for _, v := range values {
		s, ok := toScalar(v)
		if !ok {
			continue
		}
		if coerced, ok := coerceScalar(s, coerce); ok {
			set[coerced] = struct{}{}
		}
	}
	return &ValueIn{Field: field, Coerce: coerce, Values: declared, set: set}
}

func (m *ValueIn) Evaluate(ctx reqctx.Context, _ time.Time) bool {
	v, ok := ctx.Lookup(m.Field)
	if !ok {
		return false
	}
	coerced, ok := coerceScalar(v, m.Coerce)
	if !ok {
		return false
	}
	_, found := m.set[coerced]
	return found
}

func (m *ValueIn) ToJSON() map[string]any {
	values := make([]any, len(m.Values))
	copy(values, m.Values)
	return map[string]any{
		"type":   "VALUE_IN",
		"field":  m.Field,
		"values": values,
		"coerce": string(m.Coerce),
	}
}

// toScalar wraps a raw JSON-decoded value (string or number) as a
// reqctx.Scalar so declared rule values can flow through the same
// coercion path as request-context values. Any other kind (bool, null,
// object, array) reports false and never enters the value set.
func toScalar(v any) (reqctx.Scalar, bool) {
	switch val := v.(type) {
	case string:
		return reqctx.String(val), true
	case int:
		return reqctx.Int(int64(val)), true
	case int64:
		return reqctx.Int(val), true
	case float64:
		return reqctx.Int(int64(val)), true
	default:
		return reqctx.Scalar{}, false
	}
}
