package ruleset

import "testing"

func TestDecode_WireFormat(t *testing.T) {
	data := []byte(`{
		"id": 1, "version": 1, "default_gateway": "CELCOIN",
		"gateways": ["CELCOIN", "E2E"],
		"rules": [
			{"id": 1, "priority": 1, "enabled": true,
			 "condition_type": "USER", "condition_value": 999,
			 "action": {"route": "DENY", "reason_code": "blocked"}}
		]
	}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != 1 || doc.DefaultGateway != "CELCOIN" || len(doc.Gateways) != 2 || len(doc.Rules) != 1 {
		t.Fatalf("unexpected decode result: %+v", doc)
	}
	if doc.Rules[0].ConditionType != "USER" {
		t.Fatalf("unexpected rule: %+v", doc.Rules[0])
	}

	snap, errs := Compile(doc, Options{})
	if len(errs) > 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	if len(snap.Rules) != 1 {
		t.Fatalf("expected one compiled rule, got %d", len(snap.Rules))
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected a decode error")
	}
}
