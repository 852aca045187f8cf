package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"floorsense/internal/assess"
	"floorsense/internal/collab"
	"floorsense/internal/layout"
	"floorsense/internal/psysafety"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. A missing file yields [Default].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills defaults and validates
// the result. An empty document is equivalent to [Default].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.LinkPolicy != "" && !cfg.LinkPolicy.Valid() {
		errs = append(errs, fmt.Errorf("link_policy %q is invalid; valid values: reject, skip", cfg.LinkPolicy))
	}

	for i, e := range cfg.IntensityMatrix {
		prefix := fmt.Sprintf("intensity_matrix[%d]", i)
		if !e.A.Valid() {
			errs = append(errs, fmt.Errorf("%s.a: unknown zone type %q", prefix, e.A))
		}
		if !e.B.Valid() {
			errs = append(errs, fmt.Errorf("%s.b: unknown zone type %q", prefix, e.B))
		}
		if !e.Intensity.Valid() {
			errs = append(errs, fmt.Errorf("%s.intensity %q is invalid; valid values: high, medium, low", prefix, e.Intensity))
		}
	}

	for _, zt := range sortedKeys(cfg.WeightAdjustments) {
		prefix := "weight_adjustments." + zt
		if !layout.ZoneType(zt).Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown zone type %q", prefix, zt))
			continue
		}
		if err := toProfile(cfg.WeightAdjustments[zt]).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	if cfg.Watch.Interval < 0 {
		errs = append(errs, fmt.Errorf("watch.interval %s must not be negative", cfg.Watch.Interval))
	}

	return errors.Join(errs...)
}

// Policy materializes the engine options described by cfg: the intensity
// matrix with overrides applied, the weight profile and the link policy.
func (c *Config) Policy() (assess.Options, error) {
	opts := assess.DefaultOptions()

	m, err := collab.DefaultMatrix().With(c.IntensityMatrix...)
	if err != nil {
		return assess.Options{}, fmt.Errorf("config: intensity_matrix: %w", err)
	}
	opts.Matrix = m

	if len(c.WeightAdjustments) > 0 {
		adj := make(psysafety.TypeAdjustments, len(c.WeightAdjustments))
		for zt, dims := range c.WeightAdjustments {
			adj[layout.ZoneType(zt)] = toProfile(dims)
		}
		opts.Weights.Adjustments = opts.Weights.Adjustments.With(adj)
	}

	if c.LinkPolicy != "" {
		opts.LinkPolicy = c.LinkPolicy
	}
	return opts, nil
}

func toProfile(dims map[string]float64) psysafety.WeightProfile {
	p := make(psysafety.WeightProfile, len(dims))
	for d, w := range dims {
		p[psysafety.Dimension(d)] = w
	}
	return p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
