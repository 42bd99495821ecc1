package matcher

import (
	"time"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// All is a short-circuit AND over its children. All([]) is true.
type All struct{ Children []Matcher }

func (m *All) Evaluate(ctx reqctx.Context, now time.Time) bool {
	for _, c := range m.Children {
		if !c.Evaluate(ctx, now) {
			return false
		}
	}
	return true
}

func (m *All) ToJSON() map[string]any {
	return map[string]any{"all": childrenJSON(m.Children)}
}

// Any is a short-circuit OR over its children. Any([]) is false.
type Any struct{ Children []Matcher }

func (m *Any) Evaluate(ctx reqctx.Context, now time.Time) bool {
	for _, c := range m.Children {
		if c.Evaluate(ctx, now) {
			return true
		}
	}
	return false
}

func (m *Any) ToJSON() map[string]any {
	return map[string]any{"any": childrenJSON(m.Children)}
}

// None is true iff every child returns false. None([]) is true.
type None struct{ Children []Matcher }

func (m *None) Evaluate(ctx reqctx.Context, now time.Time) bool {
	for _, c := range m.Children {
		if c.Evaluate(ctx, now) {
			return false
		}
	}
	return true
}

func (m *None) ToJSON() map[string]any {
	return map[string]any{"none": childrenJSON(m.Children)}
}

func childrenJSON(children []Matcher) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c.ToJSON()
	}
	return out
}
