package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestLogAndListEvents(t *testing.T) {
	l := NewLogger(filepath.Join(t.TempDir(), "audit", "audit.sqlite"))

	if err := l.LogEvent("cli", AssessmentStarted, map[string]string{"layout": "hq"}); err != nil {
		t.Fatal(err)
	}
	if err := l.LogEvent("cli", AssessmentFinished, map[string]any{"layout": "hq", "safety_score": 61}); err != nil {
		t.Fatal(err)
	}

	all, err := l.Events("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Type != AssessmentFinished {
		t.Fatalf("events = %+v", all)
	}
	if all[0].Time.IsZero() {
		t.Fatal("event time not parsed")
	}

	finished, err := l.Events(AssessmentFinished, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(finished) != 1 {
		t.Fatalf("finished = %d, want 1", len(finished))
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(finished[0].PayloadJSON), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["layout"] != "hq" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.sqlite")
	t.Setenv(EnvDBPath, path)

	var l *Logger
	if err := l.LogEvent("watch", WatchStarted, nil); err != nil {
		t.Fatal(err)
	}
	events, err := NewLogger(path).Events(WatchStarted, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Actor != "watch" {
		t.Fatalf("events = %+v", events)
	}
}
