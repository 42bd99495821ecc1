package rulecompile

import (
	"testing"
)

func knownGW(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func TestCompile_UserAlias(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "USER", ConditionValue: float64(999),
		Action: map[string]any{"route": "DENY", "reason_code": "blocked"},
	}
	rule, errs := Compile(in, "rules[0]", knownGW("CELCOIN"), Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rule.Matcher == nil {
		t.Fatal("expected compiled matcher")
	}
}

func TestCompile_InvalidPixKeyType(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "PIX_KEY_TYPE", ConditionValue: "NOT_A_TYPE",
		Action: map[string]any{"route": "FIXED", "gateway": "E2E"},
	}
	_, errs := Compile(in, "rules[0]", knownGW("E2E"), Options{})
	if len(errs) != 1 || errs[0].Code != CodeInvalidPixKeyType {
		t.Fatalf("expected invalid_pix_key_type, got %v", errs)
	}
}

func TestCompile_AdvancedTree(t *testing.T) {
	in := RuleInput{
		ID: 3, Priority: 3, Enabled: true,
		ConditionType: "ADVANCED",
		ConditionJSON: map[string]any{
			"all": []any{
				map[string]any{"type": "VALUE_IN", "field": "pix_key_type", "values": []any{"EVP"}, "coerce": "str"},
				map[string]any{"type": "AMOUNT_RANGE", "field": "amount", "coerce": "int", "scale": float64(2),
					"min": "0.00", "max": "1000.00", "min_inclusive": true, "max_inclusive": true},
			},
		},
		Action: map[string]any{
			"route": "WEIGHTED", "weights": map[string]any{"CELCOIN": float64(70), "E2E": float64(30)},
			"sticky_by": "api_user_id",
		},
	}
	rule, errs := Compile(in, "rules[2]", knownGW("CELCOIN", "E2E"), Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rule.Action == nil {
		t.Fatal("expected compiled action")
	}
}

func TestCompile_UnknownGateway(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "USER", ConditionValue: float64(1),
		Action: map[string]any{"route": "FIXED", "gateway": "GHOST"},
	}
	_, errs := Compile(in, "rules[0]", knownGW("CELCOIN"), Options{})
	if len(errs) != 1 || errs[0].Code != CodeUnknownGateway {
		t.Fatalf("expected unknown_gateway, got %v", errs)
	}
}

func TestCompile_WeightsSumZero(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "USER", ConditionValue: float64(1),
		Action: map[string]any{"route": "WEIGHTED", "weights": map[string]any{"CELCOIN": float64(0)}},
	}
	_, errs := Compile(in, "rules[0]", knownGW("CELCOIN"), Options{})
	if len(errs) != 1 || errs[0].Code != CodeWeightsSumZero {
		t.Fatalf("expected weights_sum_zero, got %v", errs)
	}
}

func TestCompile_InvalidRegexMaxLen(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "ADVANCED",
		ConditionJSON: map[string]any{
			"type": "REGEX", "field": "pix_key", "pattern": "^a+$", "max_len": float64(0),
		},
		Action: map[string]any{"route": "DENY", "reason_code": "x"},
	}
	_, errs := Compile(in, "rules[0]", knownGW("X"), Options{})
	if len(errs) != 1 || errs[0].Code != CodeInvalidRegex {
		t.Fatalf("expected invalid_regex, got %v", errs)
	}
}

func TestCompile_RegexFlagsApplied(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "ADVANCED",
		ConditionJSON: map[string]any{
			"type": "REGEX", "field": "pix_key", "pattern": "^abc$",
			"flags": []any{"IGNORECASE"}, "max_len": float64(100),
		},
		Action: map[string]any{"route": "DENY", "reason_code": "x"},
	}
	rule, errs := Compile(in, "rules[0]", knownGW("X"), Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	node := rule.Matcher.ToJSON()
	flags, ok := node["flags"].([]string)
	if !ok || len(flags) != 1 || flags[0] != "IGNORECASE" {
		t.Fatalf("expected flags to survive compile, got %v", node["flags"])
	}
}

func TestCompile_UnknownRegexFlagRejected(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "ADVANCED",
		ConditionJSON: map[string]any{
			"type": "REGEX", "field": "pix_key", "pattern": "^a+$",
			"flags": []any{"VERBOSE"}, "max_len": float64(100),
		},
		Action: map[string]any{"route": "DENY", "reason_code": "x"},
	}
	_, errs := Compile(in, "rules[0]", knownGW("X"), Options{})
	if len(errs) != 1 || errs[0].Code != CodeInvalidRegex {
		t.Fatalf("expected invalid_regex for an unrecognized flag, got %v", errs)
	}
}

func TestCompile_ErrorPathsAreQualified(t *testing.T) {
	in := RuleInput{
		ID: 1, Priority: 1, Enabled: true,
		ConditionType: "ADVANCED",
		ConditionJSON: map[string]any{
			"all": []any{
				map[string]any{"type": "REGEX", "field": "pix_key", "pattern": "[", "max_len": float64(10)},
			},
		},
		Action: map[string]any{"route": "DENY", "reason_code": "x"},
	}
	_, errs := Compile(in, "rules[3]", knownGW("X"), Options{})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	want := "rules[3].condition_json.all[0].pattern"
	if errs[0].Path != want {
		t.Fatalf("expected path %q, got %q", want, errs[0].Path)
	}
}
