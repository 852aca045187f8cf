// Package config defines the floorsense.yml schema and turns it into the
// policy objects the assessment engine consumes.
package config

import (
	"log/slog"
	"time"

	"floorsense/internal/assess"
	"floorsense/internal/collab"
)

// LogLevel controls the minimum severity of log messages.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a known log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// SlogLevel maps l onto a slog level. Unknown or empty levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	DefaultServeAddr     = ":8089"
	DefaultWatchInterval = 2 * time.Second
)

// Config is the root of floorsense.yml.
type Config struct {
	LogLevel   LogLevel          `yaml:"log_level"`
	LinkPolicy assess.LinkPolicy `yaml:"link_policy"`

	// IntensityMatrix overrides individual cells of the built-in zone-type
	// intensity table.
	IntensityMatrix []collab.MatrixEntry `yaml:"intensity_matrix"`

	// WeightAdjustments overrides dimension base weights per zone type,
	// keyed by zone type then dimension.
	WeightAdjustments map[string]map[string]float64 `yaml:"weight_adjustments"`

	Serve ServeConfig `yaml:"serve"`
	Watch WatchConfig `yaml:"watch"`
}

// ServeConfig holds the HTTP listener settings for `floorsense serve`.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// WatchConfig holds the settings for `floorsense watch`.
type WatchConfig struct {
	Interval      time.Duration `yaml:"interval"`
	Notifications bool          `yaml:"notifications"`
}

// Default returns the configuration used when no floorsense.yml exists.
func Default() *Config {
	return &Config{
		LogLevel:   LogInfo,
		LinkPolicy: assess.LinkPolicyReject,
		Serve:      ServeConfig{Addr: DefaultServeAddr},
		Watch:      WatchConfig{Interval: DefaultWatchInterval},
	}
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LinkPolicy == "" {
		c.LinkPolicy = d.LinkPolicy
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = d.Watch.Interval
	}
}
