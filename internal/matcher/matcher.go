// Package matcher implements the leaf and boolean-combinator predicates
// evaluated against a request context. Every Matcher is pure and safe
// for concurrent use: compiled regexes and precomputed value sets are
// built once at ruleset-compile time and never mutated.
package matcher

import (
	"time"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// Matcher is a compiled boolean predicate over a request context.
type Matcher interface {
	// Evaluate reports whether ctx satisfies the matcher. now is the
	// wall-clock instant captured once at the start of selection, used
	// by TIME_WINDOW when ctx carries no "now" field.
	Evaluate(ctx reqctx.Context, now time.Time) bool

	// ToJSON renders the matcher back to its wire-format node, the
	// inverse of the rule compiler's tree-compile step. Used by
	// ruleset.Export to round-trip a compiled ruleset back to JSON.
	ToJSON() map[string]any
}

// Coerce names a field-value coercion applied before matching.
type Coerce string

const (
	CoerceInt      Coerce = "int"
	CoerceStr      Coerce = "str"
	CoerceLowerStr Coerce = "lower-str"
	CoerceNull     Coerce = "null"
	CoerceDecimal  Coerce = "decimal"
)

// coerceScalar applies c to s, reporting false if the coercion fails or
// is unsupported for the matcher calling it. Coercion failure is an
// evaluation-time anomaly, never an error: callers treat a false
// return as "matcher does not match".
func coerceScalar(s reqctx.Scalar, c Coerce) (any, bool) {
	switch c {
	case CoerceInt:
		return s.AsInt()
	case CoerceStr:
		return s.AsString(false)
	case CoerceLowerStr:
		return s.AsString(true)
	case CoerceNull:
		return s.Raw(), true
	default:
		return nil, false
	}
}
