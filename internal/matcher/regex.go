package matcher

import (
	"regexp"
	"strconv"
	"time"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// RegexMode selects where within the field value the pattern must match.
type RegexMode string

const (
	RegexSearch    RegexMode = "search"
	RegexMatch     RegexMode = "match"
	RegexFullMatch RegexMode = "fullmatch"
)

// regexFlagPrefix maps a declared flag name to the Go inline flag it
// contributes to the compiled pattern (https://pkg.go.dev/regexp/syntax).
var regexFlagPrefix = map[string]string{
	"IGNORECASE": "i",
	"MULTILINE":  "m",
	"DOTALL":     "s",
}

// Regex matches a field value against a compiled pattern. Pattern and
// Flags are compiled once at ruleset-compile time; MaxLen bounds the
// input examined, guarding against catastrophic-backtracking input
// (ReDoS).
type Regex struct {
	Field   string
	Pattern string
	Mode    RegexMode
	Coerce  Coerce
	MaxLen  int
	Flags   []string // original declared flags, preserved for ToJSON
	re      *regexp.Regexp
}

// NewRegex compiles pattern once, after prefixing it with the inline
// flag group derived from flags (e.g. ["IGNORECASE", "DOTALL"] becomes
// "(?is)" + pattern). Returns an error if a flag name is unrecognized,
// the resulting pattern does not compile, or maxLen < 1.
func NewRegex(field, pattern string, mode RegexMode, coerce Coerce, maxLen int, flags []string) (*Regex, error) {
	if maxLen < 1 {
		return nil, ErrInvalidMaxLen
	}
	var group string
	for _, f := range flags {
		letter, ok := regexFlagPrefix[f]
		if !ok {
			return nil, regexErr("unrecognized regex flag " + strconv.Quote(f))
		}
		group += letter
	}
	compiled := pattern
	if group != "" {
		compiled = "(?" + group + ")" + pattern
	}
	re, err := regexp.Compile(compiled)
	if err != nil {
		return nil, err
	}
	return &Regex{Field: field, Pattern: pattern, Mode: mode, Coerce: coerce, MaxLen: maxLen, Flags: flags, re: re}, nil
}

// ErrInvalidMaxLen is returned by NewRegex when max_len < 1.
var ErrInvalidMaxLen = regexErr("regex max_len must be >= 1")

type regexErr string

func (e regexErr) Error() string { return string(e) }

func (m *Regex) Evaluate(ctx reqctx.Context, _ time.Time) bool {
	v, ok := ctx.Lookup(m.Field)
	if !ok {
		return false
	}
	str, ok := coerceToString(v, m.Coerce)
	if !ok {
		return false
	}
	// ReDoS guard: never examine more than MaxLen input characters.
	if len(str) > m.MaxLen {
		return false
	}

	switch m.Mode {
	case RegexMatch:
		loc := m.re.FindStringIndex(str)
		return loc != nil && loc[0] == 0
	case RegexFullMatch:
		loc := m.re.FindStringIndex(str)
		return loc != nil && loc[0] == 0 && loc[1] == len(str)
	default: // RegexSearch
		return m.re.MatchString(str)
	}
}

func (m *Regex) ToJSON() map[string]any {
	out := map[string]any{
		"type":    "REGEX",
		"field":   m.Field,
		"pattern": m.Pattern,
		"mode":    string(m.Mode),
		"coerce":  string(m.Coerce),
		"max_len": m.MaxLen,
	}
	if len(m.Flags) > 0 {
		out["flags"] = m.Flags
	}
	return out
}

func coerceToString(s reqctx.Scalar, c Coerce) (string, bool) {
	switch c {
	case CoerceLowerStr:
		return s.AsString(true)
	default:
		return s.AsString(false)
	}
}
