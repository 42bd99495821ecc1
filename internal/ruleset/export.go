package ruleset

import "sort"

// Export renders a compiled Snapshot back to its wire-format JSON shape
// by walking each rule's matcher and action ToJSON. Feeding the result
// back through Compile must produce a Snapshot that resolves every
// Decision identically to the original.
func Export(snap *Snapshot) map[string]any {
	gateways := make([]string, 0, len(snap.KnownGateways))
	for gw := range snap.KnownGateways {
		gateways = append(gateways, gw)
	}
	sort.Strings(gateways)

	rules := make([]any, 0, len(snap.Rules))
	for _, r := range snap.Rules {
		node := r.Matcher.ToJSON()
		rules = append(rules, map[string]any{
			"id":             r.ID,
			"priority":       r.Priority,
			"enabled":        true,
			"condition_type": "ADVANCED",
			"condition_json": node,
			"action":         r.Action.ToJSON(),
		})
	}

	doc := map[string]any{
		"id":       snap.ID,
		"version":  snap.Version,
		"gateways": gateways,
		"rules":    rules,
	}
	if snap.DefaultGateway != "" {
		doc["default_gateway"] = snap.DefaultGateway
	}
	return doc
}
