// Package selector evaluates a compiled ruleset snapshot against a
// request context and resolves a routing Decision. Selection is
// CPU-only — no I/O, no blocking — so it can run directly on the
// request path.
package selector

import (
	"errors"
	"math/rand"
	"time"

	"github.com/TimurManjosov/gwselect/internal/action"
	"github.com/TimurManjosov/gwselect/internal/reqctx"
	"github.com/TimurManjosov/gwselect/internal/rulecompile"
	"github.com/TimurManjosov/gwselect/internal/ruleset"
)

// ErrNoActiveSnapshot is returned when Select is called against a nil
// snapshot — i.e. before any ruleset has ever been installed.
var ErrNoActiveSnapshot = errors.New("selector: no active snapshot")

// DecisionKind names which branch of Decision was produced, used as a
// telemetry label.
type DecisionKind string

const (
	KindRouted    DecisionKind = "routed"
	KindDenied    DecisionKind = "denied"
	KindDefaulted DecisionKind = "defaulted"
	KindNoMatch   DecisionKind = "no_match"
)

// Decision is the outcome of one selection.
type Decision struct {
	Kind       DecisionKind
	Gateway    string // set for Routed and Defaulted
	ReasonCode string // set for Denied
	RuleID     int64  // set for Routed and Denied
	HasRuleID  bool
}

// Event is the non-PII metadata emitted once per selection through
// Options.OnDecision. Never carries raw pix_key or api_user_id values
// — only stable fingerprints of the fields used to key the decision.
type Event struct {
	RulesetID int64
	Version   int64
	RuleID    int64
	HasRuleID bool
	Kind      DecisionKind
	LatencyNS int64
	CtxKeyFP  uint64
}

// Options configures one selection call.
type Options struct {
	// Now, if non-zero, is used as the evaluation instant instead of
	// wall-clock time. Lets tests pin TIME_WINDOW evaluation.
	Now time.Time
	// RNG is used to resolve non-sticky WEIGHTED actions. If nil, such
	// actions draw from a package-level default source instead (see
	// action.Weighted.Resolve); pass a seeded RNG for reproducible
	// results.
	RNG *rand.Rand
	// OnDecision, if set, is invoked once per selection with non-PII
	// decision metadata.
	OnDecision func(Event)
}

// Select evaluates snap against ctx and resolves a Decision. Rules are
// tried in ascending priority order (snap.Rules is pre-sorted); the
// first matching rule wins and no lower-priority rule is evaluated
// after a match.
func Select(snap *ruleset.Snapshot, ctx reqctx.Context, opts Options) (Decision, error) {
	if snap == nil {
		return Decision{}, ErrNoActiveSnapshot
	}

	start := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	decision := Decision{Kind: KindNoMatch}
	for _, rule := range snap.Rules {
		if !rule.Matcher.Evaluate(ctx, now) {
			continue
		}
		decision = resolveAction(rule, ctx, opts.RNG)
		break
	}
	if decision.Kind == KindNoMatch && snap.DefaultGateway != "" {
		decision = Decision{Kind: KindDefaulted, Gateway: snap.DefaultGateway}
	}

	if opts.OnDecision != nil {
		opts.OnDecision(Event{
			RulesetID: snap.ID,
			Version:   snap.Version,
			RuleID:    decision.RuleID,
			HasRuleID: decision.HasRuleID,
			Kind:      decision.Kind,
			LatencyNS: time.Since(start).Nanoseconds(),
			CtxKeyFP:  fingerprint(ctx),
		})
	}

	return decision, nil
}

func resolveAction(rule rulecompile.CompiledRule, ctx reqctx.Context, rng *rand.Rand) Decision {
	switch act := rule.Action.(type) {
	case action.Fixed:
		return Decision{Kind: KindRouted, Gateway: act.Gateway, RuleID: rule.ID, HasRuleID: true}
	case action.Deny:
		return Decision{Kind: KindDenied, ReasonCode: act.ReasonCode, RuleID: rule.ID, HasRuleID: true}
	case *action.Weighted:
		gw := act.Resolve(stickyValue(ctx, act.StickyBy), rng)
		return Decision{Kind: KindRouted, Gateway: gw, RuleID: rule.ID, HasRuleID: true}
	default:
		return Decision{Kind: KindNoMatch}
	}
}

func stickyValue(ctx reqctx.Context, stickyBy string) *string {
	if stickyBy == "" {
		return nil
	}
	s, ok := ctx.Lookup(stickyBy)
	if !ok {
		return nil
	}
	v, ok := s.AsString(false)
	if !ok {
		return nil
	}
	return &v
}

// fingerprint derives a stable, non-reversible identifier for the
// fields a decision was keyed on, so decision events never carry raw
// pix_key or api_user_id values.
func fingerprint(ctx reqctx.Context) uint64 {
	var h uint64
	for _, field := range []string{"api_user_id", "pix_key"} {
		s, ok := ctx.Lookup(field)
		if !ok {
			continue
		}
		str, ok := s.AsString(false)
		if !ok {
			continue
		}
		h ^= action.StableHash(field + ":" + str)
	}
	return h
}
