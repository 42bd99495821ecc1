package ruleset

import (
	"encoding/json"
	"fmt"

	"github.com/TimurManjosov/gwselect/internal/rulecompile"
)

// Decode parses the wire-format ruleset JSON document described by the
// external interface into a Document ready for Compile. It performs no
// semantic validation itself — that is Compile's job — only enough
// structural decoding to populate a Document.
func Decode(data []byte) (Document, error) {
	var raw struct {
		ID             int64            `json:"id"`
		Version        int64            `json:"version"`
		DefaultGateway string           `json:"default_gateway"`
		Gateways       []string         `json:"gateways"`
		Rules          []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("ruleset: decode: %w", err)
	}

	rules := make([]rulecompile.RuleInput, 0, len(raw.Rules))
	for i, rawRule := range raw.Rules {
		var r struct {
			ID             int64          `json:"id"`
			Priority       int64          `json:"priority"`
			Enabled        bool           `json:"enabled"`
			ConditionType  string         `json:"condition_type"`
			ConditionValue any            `json:"condition_value"`
			ConditionJSON  map[string]any `json:"condition_json"`
			Action         map[string]any `json:"action"`
		}
		if err := json.Unmarshal(rawRule, &r); err != nil {
			return Document{}, fmt.Errorf("ruleset: decode rules[%d]: %w", i, err)
		}
		rules = append(rules, rulecompile.RuleInput{
			ID: r.ID, Priority: r.Priority, Enabled: r.Enabled,
			ConditionType: r.ConditionType, ConditionValue: r.ConditionValue,
			ConditionJSON: r.ConditionJSON, Action: r.Action,
		})
	}

	return Document{
		ID: raw.ID, Version: raw.Version, DefaultGateway: raw.DefaultGateway,
		Gateways: raw.Gateways, Rules: rules,
	}, nil
}
