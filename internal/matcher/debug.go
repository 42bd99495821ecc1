package matcher

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gwselect/internal/reqctx"
)

// Debug decorates an inner Matcher, recording (path, matcher_kind,
// result, elapsed_ns) through the supplied logger each time Evaluate
// runs. It is installed only when a ruleset is compiled with debug
// tracing requested — zero cost when absent, since callers simply
// never construct one.
type Debug struct {
	Inner Matcher
	Path  string
	Kind  string
	Log   zerolog.Logger
}

func WrapDebug(inner Matcher, path, kind string, log zerolog.Logger) *Debug {
	return &Debug{Inner: inner, Path: path, Kind: kind, Log: log}
}

func (d *Debug) Evaluate(ctx reqctx.Context, now time.Time) bool {
	start := time.Now()
	result := d.Inner.Evaluate(ctx, now)
	d.Log.Debug().
		Str("path", d.Path).
		Str("matcher_kind", d.Kind).
		Bool("result", result).
		Int64("elapsed_ns", time.Since(start).Nanoseconds()).
		Msg("matcher evaluated")
	return result
}

func (d *Debug) ToJSON() map[string]any {
	return d.Inner.ToJSON()
}
