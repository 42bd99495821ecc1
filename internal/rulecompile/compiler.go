// Package rulecompile compiles one rule's declared condition and action
// into a matcher tree and a normalized action.
package rulecompile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gwselect/internal/action"
	"github.com/TimurManjosov/gwselect/internal/matcher"
)

// RuleInput is one rule's declared (wire) form.
type RuleInput struct {
	ID             int64
	Priority       int64
	Enabled        bool
	ConditionType  string
	ConditionValue any
	ConditionJSON  map[string]any
	Action         map[string]any
}

// CompiledRule is one rule's compiled form.
type CompiledRule struct {
	ID       int64
	Priority int64
	Matcher  matcher.Matcher
	Action   action.Action
}

// Options configures a single compile pass.
type Options struct {
	Debug bool
	Log   zerolog.Logger
}

// Compile validates and normalizes one rule. It collects and returns
// every error it can find for this rule rather than stopping at the
// first; a non-empty error slice means the rule (and therefore the
// whole ruleset) must not install.
func Compile(in RuleInput, path string, knownGateways map[string]struct{}, opts Options) (*CompiledRule, []CompileError) {
	var errs []CompileError

	node := in.ConditionJSON
	if in.ConditionType != "ADVANCED" {
		expanded, err := expandAlias(in.ConditionType, in.ConditionValue, path)
		if err != nil {
			return nil, []CompileError{*err}
		}
		node = expanded
	} else if node == nil {
		errs = append(errs, newErr(path+".condition_json", CodeBadType, "ADVANCED condition_type requires condition_json"))
		return nil, errs
	}

	m, mErrs := compileMatcherNode(node, path+".condition_json", opts)
	errs = append(errs, mErrs...)

	act, aErrs := compileAction(in.Action, knownGateways, path+".action")
	errs = append(errs, aErrs...)

	if len(errs) > 0 {
		return nil, errs
	}

	return &CompiledRule{ID: in.ID, Priority: in.Priority, Matcher: m, Action: act}, nil
}

// compileMatcherNode recursively compiles a matcher-tree JSON node into
// a matcher.Matcher, optionally wrapping each leaf in a debug decorator.
func compileMatcherNode(node map[string]any, path string, opts Options) (matcher.Matcher, []CompileError) {
	if node == nil {
		return nil, []CompileError{newErr(path, CodeBadType, "expected a matcher node, got null")}
	}

	if children, errs := fieldAnySlice(node, "all", path); children != nil || errs != nil {
		if errs != nil {
			return nil, []CompileError{*errs}
		}
		return compileCombinator(children, path+".all", opts, func(m []matcher.Matcher) matcher.Matcher { return &matcher.All{Children: m} })
	}
	if children, errs := fieldAnySlice(node, "any", path); children != nil || errs != nil {
		if errs != nil {
			return nil, []CompileError{*errs}
		}
		return compileCombinator(children, path+".any", opts, func(m []matcher.Matcher) matcher.Matcher { return &matcher.Any{Children: m} })
	}
	if children, errs := fieldAnySlice(node, "none", path); children != nil || errs != nil {
		if errs != nil {
			return nil, []CompileError{*errs}
		}
		return compileCombinator(children, path+".none", opts, func(m []matcher.Matcher) matcher.Matcher { return &matcher.None{Children: m} })
	}

	typ, _, errp := fieldString(node, "type", path)
	if errp != nil {
		return nil, []CompileError{*errp}
	}
	if typ == "" {
		return nil, []CompileError{newErr(path, CodeBadType, "matcher node missing type/all/any/none")}
	}

	var m matcher.Matcher
	var errs []CompileError
	switch typ {
	case "VALUE_IN":
		m, errs = compileValueIn(node, path)
	case "REGEX":
		m, errs = compileRegex(node, path)
	case "AMOUNT_RANGE":
		m, errs = compileAmountRange(node, path)
	case "TIME_WINDOW":
		m, errs = compileTimeWindow(node, path)
	default:
		return nil, []CompileError{newErr(path+".type", CodeBadType, "unknown matcher type %q", typ)}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if opts.Debug {
		m = matcher.WrapDebug(m, path, typ, opts.Log)
	}
	return m, nil
}

func compileCombinator(children []any, path string, opts Options, build func([]matcher.Matcher) matcher.Matcher) (matcher.Matcher, []CompileError) {
	compiled := make([]matcher.Matcher, 0, len(children))
	var errs []CompileError
	for i, child := range children {
		childNode, ok := child.(map[string]any)
		if !ok {
			errs = append(errs, newErr(fmt.Sprintf("%s[%d]", path, i), CodeBadType, "expected matcher node, got %T", child))
			continue
		}
		m, childErrs := compileMatcherNode(childNode, fmt.Sprintf("%s[%d]", path, i), opts)
		if len(childErrs) > 0 {
			errs = append(errs, childErrs...)
			continue
		}
		compiled = append(compiled, m)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return build(compiled), nil
}

func compileValueIn(node map[string]any, path string) (matcher.Matcher, []CompileError) {
	var errs []CompileError

	field, _, err := fieldString(node, "field", path)
	if err != nil {
		errs = append(errs, *err)
	}
	coerceStr, _, err := fieldString(node, "coerce", path)
	if err != nil {
		errs = append(errs, *err)
	}
	values, err := fieldAnySlice(node, "values", path)
	if err != nil {
		errs = append(errs, *err)
	}
	if len(values) == 0 {
		errs = append(errs, newErr(path+".values", CodeEmptyValues, "values must be non-empty"))
	}
	coerce := matcher.Coerce(coerceStr)
	switch coerce {
	case matcher.CoerceInt, matcher.CoerceStr, matcher.CoerceLowerStr, matcher.CoerceNull:
	default:
		errs = append(errs, newErr(path+".coerce", CodeBadType, "coerce must be one of int, str, lower-str, null"))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return matcher.NewValueIn(field, values, coerce), nil
}

func compileRegex(node map[string]any, path string) (matcher.Matcher, []CompileError) {
	var errs []CompileError

	field, _, err := fieldString(node, "field", path)
	if err != nil {
		errs = append(errs, *err)
	}
	pattern, _, err := fieldString(node, "pattern", path)
	if err != nil {
		errs = append(errs, *err)
	}
	modeStr, _, err := fieldString(node, "mode", path)
	if err != nil {
		errs = append(errs, *err)
	}
	if modeStr == "" {
		modeStr = string(matcher.RegexSearch)
	}
	coerceStr, _, err := fieldString(node, "coerce", path)
	if err != nil {
		errs = append(errs, *err)
	}
	if coerceStr == "" {
		coerceStr = string(matcher.CoerceStr)
	}
	maxLen, err := fieldInt(node, "max_len", path, 0)
	if err != nil {
		errs = append(errs, *err)
	}
	flags, err := fieldStringSlice(node, "flags", path)
	if err != nil {
		errs = append(errs, *err)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	m, compErr := matcher.NewRegex(field, pattern, matcher.RegexMode(modeStr), matcher.Coerce(coerceStr), maxLen, flags)
	if compErr != nil {
		return nil, []CompileError{newErr(path+".pattern", CodeInvalidRegex, "%v", compErr)}
	}
	return m, nil
}

func compileAmountRange(node map[string]any, path string) (matcher.Matcher, []CompileError) {
	var errs []CompileError

	field, _, err := fieldString(node, "field", path)
	if err != nil {
		errs = append(errs, *err)
	}
	coerceStr, _, err := fieldString(node, "coerce", path)
	if err != nil {
		errs = append(errs, *err)
	}
	scale, err := fieldInt(node, "scale", path, 0)
	if err != nil {
		errs = append(errs, *err)
	}
	minStr, _, err := fieldString(node, "min", path)
	if err != nil {
		errs = append(errs, *err)
	}
	maxStr, _, err := fieldString(node, "max", path)
	if err != nil {
		errs = append(errs, *err)
	}
	minIncl, err := fieldBool(node, "min_inclusive", path, true)
	if err != nil {
		errs = append(errs, *err)
	}
	maxIncl, err := fieldBool(node, "max_inclusive", path, true)
	if err != nil {
		errs = append(errs, *err)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	m, compErr := matcher.NewAmountRange(field, matcher.Coerce(coerceStr), scale, minStr, maxStr, minIncl, maxIncl)
	if compErr != nil {
		return nil, []CompileError{newErr(path, CodeBadDecimal, "%v", compErr)}
	}
	return m, nil
}

func compileTimeWindow(node map[string]any, path string) (matcher.Matcher, []CompileError) {
	var errs []CompileError

	tz, _, err := fieldString(node, "tz", path)
	if err != nil {
		errs = append(errs, *err)
	}
	start, _, err := fieldString(node, "start", path)
	if err != nil {
		errs = append(errs, *err)
	}
	end, _, err := fieldString(node, "end", path)
	if err != nil {
		errs = append(errs, *err)
	}
	days, err := fieldStringSlice(node, "days_of_week", path)
	if err != nil {
		errs = append(errs, *err)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	m, compErr := matcher.NewTimeWindow(tz, start, end, days)
	if compErr != nil {
		return nil, []CompileError{newErr(path+".tz", CodeInvalidTimezone, "%v", compErr)}
	}
	return m, nil
}

// compileAction normalizes a rule's action JSON.
func compileAction(node map[string]any, knownGateways map[string]struct{}, path string) (action.Action, []CompileError) {
	if node == nil {
		return nil, []CompileError{newErr(path, CodeBadType, "action is required")}
	}
	route, _, err := fieldString(node, "route", path)
	if err != nil {
		return nil, []CompileError{*err}
	}

	switch route {
	case "FIXED":
		gw, _, err := fieldString(node, "gateway", path)
		if err != nil {
			return nil, []CompileError{*err}
		}
		if _, ok := knownGateways[gw]; !ok {
			return nil, []CompileError{newErr(path+".gateway", CodeUnknownGateway, "gateway %q is not in known_gateways", gw)}
		}
		return action.Fixed{Gateway: gw}, nil

	case "WEIGHTED":
		return compileWeighted(node, knownGateways, path)

	case "DENY":
		reason, _, err := fieldString(node, "reason_code", path)
		if err != nil {
			return nil, []CompileError{*err}
		}
		if reason == "" {
			return nil, []CompileError{newErr(path+".reason_code", CodeBadType, "reason_code must be a non-empty string")}
		}
		return action.Deny{ReasonCode: reason}, nil

	default:
		return nil, []CompileError{newErr(path+".route", CodeUnknownRoute, "unknown route %q", route)}
	}
}

func compileWeighted(node map[string]any, knownGateways map[string]struct{}, path string) (action.Action, []CompileError) {
	raw, ok := node["weights"]
	if !ok {
		return nil, []CompileError{newErr(path+".weights", CodeBadType, "weighted action requires weights")}
	}
	weightsRaw, ok := raw.(map[string]any)
	if !ok {
		return nil, []CompileError{newErr(path+".weights", CodeBadType, "expected object, got %T", raw)}
	}

	weights := make(map[string]int, len(weightsRaw))
	var errs []CompileError
	sum := 0
	for gw, v := range weightsRaw {
		if _, ok := knownGateways[gw]; !ok {
			errs = append(errs, newErr(path+".weights."+gw, CodeUnknownGateway, "gateway %q is not in known_gateways", gw))
			continue
		}
		n, ok := toInt(v)
		if !ok || n < 0 {
			errs = append(errs, newErr(path+".weights."+gw, CodeBadType, "weight must be a non-negative integer"))
			continue
		}
		weights[gw] = n
		sum += n
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if sum <= 0 {
		return nil, []CompileError{newErr(path+".weights", CodeWeightsSumZero, "weighted action requires at least one entry with weight > 0")}
	}

	stickyBy, _, err := fieldString(node, "sticky_by", path)
	if err != nil {
		return nil, []CompileError{*err}
	}

	return action.NewWeighted(weights, action.DefaultTotal, stickyBy), nil
}
