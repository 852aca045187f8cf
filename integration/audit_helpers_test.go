package integration_test

import (
	"encoding/json"
	"testing"

	"floorsense/internal/audit"
)

// auditPayloads returns the decoded payloads of every eventType event in the
// workspace audit DB, newest first.
func auditPayloads(t *testing.T, dbPath, eventType string) []map[string]any {
	t.Helper()
	events, err := audit.NewLogger(dbPath).Events(eventType, 0)
	if err != nil {
		t.Fatalf("read audit events from %s: %v", dbPath, err)
	}
	payloads := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		var p map[string]any
		if err := json.Unmarshal([]byte(ev.PayloadJSON), &p); err != nil {
			t.Fatalf("decode %s payload %d: %v", eventType, ev.ID, err)
		}
		payloads = append(payloads, p)
	}
	return payloads
}

func requireAuditEvents(t *testing.T, dbPath string, want []string) {
	t.Helper()
	for _, eventType := range want {
		if len(auditPayloads(t, dbPath, eventType)) == 0 {
			t.Fatalf("missing audit event %s in %s", eventType, dbPath)
		}
	}
}

// latestPayload returns the newest eventType payload and fails unless it
// carries every listed field.
func latestPayload(t *testing.T, dbPath, eventType string, fields ...string) map[string]any {
	t.Helper()
	payloads := auditPayloads(t, dbPath, eventType)
	if len(payloads) == 0 {
		t.Fatalf("missing audit event %s in %s", eventType, dbPath)
	}
	p := payloads[0]
	for _, f := range fields {
		if _, ok := p[f]; !ok {
			t.Fatalf("%s payload has no %q: %v", eventType, f, p)
		}
	}
	return p
}
