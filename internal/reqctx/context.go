// Package reqctx defines the read-only request context the selector
// evaluates matchers against, and the tagged scalar values it carries.
package reqctx

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the concrete type held by a Scalar.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindDecimalString
	KindTimestamp
)

// Scalar is a single typed value read from a request context. Only one
// of the fields matching Kind is meaningful.
type Scalar struct {
	Kind      Kind
	Int       int64
	Str       string
	Timestamp time.Time
}

func Int(v int64) Scalar    { return Scalar{Kind: KindInt, Int: v} }
func String(v string) Scalar { return Scalar{Kind: KindString, Str: v} }

// Decimal stores a decimal-string scalar, e.g. "1000.01", used by
// AMOUNT_RANGE matchers configured with coerce=decimal.
func Decimal(v string) Scalar { return Scalar{Kind: KindDecimalString, Str: v} }

func Timestamp(v time.Time) Scalar { return Scalar{Kind: KindTimestamp, Timestamp: v} }

// Context is a read-only, dotted-path mapping from field name to Scalar.
// It is produced upstream of the selector and never mutated by it.
type Context map[string]Scalar

// Lookup resolves a dotted field path (e.g. "amount" or "card.brand").
// Unknown paths read as absent, never an error.
func (c Context) Lookup(path string) (Scalar, bool) {
	if c == nil {
		return Scalar{}, false
	}
	v, ok := c[path]
	return v, ok
}

// Now returns ctx["now"] if present and well-formed, otherwise the
// supplied fallback (normally wall-clock time captured at the start of
// selection).
func (c Context) Now(fallback time.Time) time.Time {
	v, ok := c.Lookup("now")
	if !ok || v.Kind != KindTimestamp {
		return fallback
	}
	return v.Timestamp
}

// AsString coerces a Scalar to a string per the matcher coerce rules.
// lower, when true, additionally lowercases the result (coerce=lower-str).
func (s Scalar) AsString(lower bool) (string, bool) {
	var out string
	switch s.Kind {
	case KindString, KindDecimalString:
		out = s.Str
	case KindInt:
		out = strconv.FormatInt(s.Int, 10)
	case KindTimestamp:
		out = s.Timestamp.Format(time.RFC3339)
	default:
		return "", false
	}
	if lower {
		out = strings.ToLower(out)
	}
	return out, true
}

// AsInt coerces a Scalar to an integer per coerce=int. Strings are
// parsed; a parse failure is reported via the bool return, never an
// error.
func (s Scalar) AsInt() (int64, bool) {
	switch s.Kind {
	case KindInt:
		return s.Int, true
	case KindString, KindDecimalString:
		n, err := strconv.ParseInt(s.Str, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Raw returns the scalar's value without coercion, used by coerce=null.
func (s Scalar) Raw() any {
	switch s.Kind {
	case KindInt:
		return s.Int
	case KindString, KindDecimalString:
		return s.Str
	case KindTimestamp:
		return s.Timestamp
	default:
		return nil
	}
}
