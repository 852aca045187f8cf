package config

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"floorsense/internal/assess"
	"floorsense/internal/layout"
	"floorsense/internal/psysafety"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "floorsense.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != LogInfo || cfg.LinkPolicy != assess.LinkPolicyReject {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Serve.Addr != DefaultServeAddr || cfg.Watch.Interval != DefaultWatchInterval {
		t.Fatalf("unexpected serve/watch defaults: %+v", cfg)
	}
}

func TestLoadFromReaderFullDocument(t *testing.T) {
	doc := `
log_level: debug
link_policy: skip
intensity_matrix:
  - {a: storage, b: lounge, intensity: high}
weight_adjustments:
  meeting: {privacy: 0.5}
serve:
  addr: "127.0.0.1:9000"
watch:
  interval: 500ms
  notifications: true
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.LogLevel != LogDebug || cfg.LinkPolicy != assess.LinkPolicySkip {
		t.Fatalf("unexpected levels: %+v", cfg)
	}
	if cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", cfg.Serve.Addr)
	}
	if cfg.Watch.Interval != 500*time.Millisecond || !cfg.Watch.Notifications {
		t.Fatalf("watch = %+v", cfg.Watch)
	}

	opts, err := cfg.Policy()
	if err != nil {
		t.Fatalf("Policy: %v", err)
	}
	if opts.LinkPolicy != assess.LinkPolicySkip {
		t.Fatalf("policy link policy = %q", opts.LinkPolicy)
	}
	if got := opts.Matrix.Lookup(layout.ZoneLounge, layout.ZoneStorage); got != layout.IntensityHigh {
		t.Fatalf("override lookup = %q, want high", got)
	}
	if got := opts.Matrix.Lookup(layout.ZoneWorkspace, layout.ZoneMeeting); got != layout.IntensityHigh {
		t.Fatalf("default lookup lost: %q", got)
	}

	w := opts.Weights.For(layout.ZoneMeeting)
	if math.Abs(w[psysafety.Privacy]-0.5/1.5) > 1e-9 {
		t.Fatalf("meeting privacy weight = %v", w[psysafety.Privacy])
	}
	if math.Abs(w[psysafety.Contributor]-0.25/1.5) > 1e-9 {
		t.Fatalf("built-in meeting adjustment lost: %v", w[psysafety.Contributor])
	}
}

func TestLoadFromReaderEmptyDocument(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Serve.Addr != DefaultServeAddr {
		t.Fatalf("addr = %q", cfg.Serve.Addr)
	}
}

func TestLoadFromReaderRejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("log_levle: debug\n"))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	doc := `
log_level: loud
link_policy: ignore
intensity_matrix:
  - {a: kitchen, b: lounge, intensity: extreme}
weight_adjustments:
  garage: {privacy: 0.1}
  lab: {bravery: 0.2}
`
	_, err := LoadFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{
		`log_level "loud" is invalid`,
		`link_policy "ignore" is invalid`,
		`intensity_matrix[0].a: unknown zone type "kitchen"`,
		`intensity_matrix[0].intensity "extreme" is invalid`,
		`weight_adjustments.garage: unknown zone type`,
		`weight_adjustments.lab: unknown dimension "bravery"`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateNegativeWeight(t *testing.T) {
	cfg := Default()
	cfg.WeightAdjustments = map[string]map[string]float64{"lab": {"learner": -1}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected negative weight to be rejected")
	}
}

func TestLoadReportsPathOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floorsense.yml")
	if err := os.WriteFile(path, []byte("log_level: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("err = %v, want mention of %s", err, path)
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Fatal("parse error must not look like a missing file")
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[LogLevel]slog.Level{
		LogDebug: slog.LevelDebug,
		LogInfo:  slog.LevelInfo,
		LogWarn:  slog.LevelWarn,
		LogError: slog.LevelError,
		"":       slog.LevelInfo,
	}
	for in, want := range cases {
		if got := in.SlogLevel(); got != want {
			t.Errorf("%q.SlogLevel() = %v, want %v", in, got, want)
		}
	}
}
