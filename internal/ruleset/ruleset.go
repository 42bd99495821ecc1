// Package ruleset validates a whole ruleset document and compiles it
// into an immutable Snapshot ready for installation into a registry.
package ruleset

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gwselect/internal/rulecompile"
)

// Document is a ruleset's declared (wire) form.
type Document struct {
	ID             int64
	Version        int64
	DefaultGateway string
	Gateways       []string
	Rules          []rulecompile.RuleInput
}

// Snapshot is the compiled, immutable form of a Document, safe for
// concurrent evaluation. Nothing about a Snapshot is mutated after
// Compile returns it.
type Snapshot struct {
	ID             int64
	Version        int64
	DefaultGateway string
	KnownGateways  map[string]struct{}
	Rules          []rulecompile.CompiledRule // sorted ascending by Priority
	CompiledAt     time.Time
}

// Options configures a compile pass over a whole document.
type Options struct {
	Debug bool
	Log   zerolog.Logger
	// Now overrides CompiledAt for tests; the zero value means
	// time.Now().UTC().
	Now time.Time
}

// Compile validates Document and produces an immutable Snapshot, or
// reports every structural and semantic error found across the whole
// ruleset. A non-empty error slice means the document must not install
// — any error aborts the whole compile, never a partial snapshot.
func Compile(doc Document, opts Options) (*Snapshot, []rulecompile.CompileError) {
	var errs []rulecompile.CompileError

	if doc.ID == 0 {
		errs = append(errs, rulecompile.CompileError{Path: "id", Code: rulecompile.CodeBadType, Message: "id is required"})
	}
	if len(doc.Gateways) == 0 {
		errs = append(errs, rulecompile.CompileError{Path: "gateways", Code: rulecompile.CodeBadType, Message: "known_gateways must be non-empty"})
	}

	known := make(map[string]struct{}, len(doc.Gateways))
	for _, gw := range doc.Gateways {
		known[gw] = struct{}{}
	}
	if doc.DefaultGateway != "" {
		if _, ok := known[doc.DefaultGateway]; !ok {
			errs = append(errs, rulecompile.CompileError{
				Path: "default_gateway", Code: rulecompile.CodeUnknownGateway,
				Message: fmt.Sprintf("default_gateway %q is not in known_gateways", doc.DefaultGateway),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	surviving := make([]rulecompile.RuleInput, 0, len(doc.Rules))
	docIndex := make([]int, 0, len(doc.Rules)) // index of each surviving rule in doc.Rules
	for i, r := range doc.Rules {
		if !r.Enabled {
			continue
		}
		surviving = append(surviving, r)
		docIndex = append(docIndex, i)
	}

	compiled := make([]rulecompile.CompiledRule, 0, len(surviving))
	copts := rulecompile.Options{Debug: opts.Debug, Log: opts.Log}
	for i, r := range surviving {
		path := fmt.Sprintf("rules[%d]", docIndex[i])
		cr, rErrs := rulecompile.Compile(r, path, known, copts)
		if len(rErrs) > 0 {
			errs = append(errs, rErrs...)
			continue
		}
		compiled = append(compiled, *cr)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	seenPriority := make(map[int64]struct{}, len(compiled))
	seenID := make(map[int64]struct{}, len(compiled))
	for i, r := range compiled {
		path := fmt.Sprintf("rules[%d]", docIndex[i])
		if _, dup := seenPriority[r.Priority]; dup {
			errs = append(errs, rulecompile.CompileError{
				Path: path + ".priority", Code: rulecompile.CodeDuplicatePriority,
				Message: fmt.Sprintf("priority %d is declared by more than one rule", r.Priority),
			})
		}
		seenPriority[r.Priority] = struct{}{}
		if _, dup := seenID[r.ID]; dup {
			errs = append(errs, rulecompile.CompileError{
				Path: path + ".id", Code: rulecompile.CodeDuplicateRuleID,
				Message: fmt.Sprintf("rule id %d is declared by more than one rule", r.ID),
			})
		}
		seenID[r.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	sort.Slice(compiled, func(i, j int) bool { return compiled[i].Priority < compiled[j].Priority })

	compiledAt := opts.Now
	if compiledAt.IsZero() {
		compiledAt = time.Now().UTC()
	}

	return &Snapshot{
		ID:             doc.ID,
		Version:        doc.Version,
		DefaultGateway: doc.DefaultGateway,
		KnownGateways:  known,
		Rules:          compiled,
		CompiledAt:     compiledAt,
	}, nil
}
