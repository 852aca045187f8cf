// Package assess drives the spatial, collaboration, efficiency and safety
// models over a whole layout and assembles the reports the editor displays.
package assess

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"floorsense/internal/allen"
	"floorsense/internal/collab"
	"floorsense/internal/layout"
	"floorsense/internal/observe"
	"floorsense/internal/psysafety"
)

// ErrZoneNotFound is returned, wrapped in a LinkError, when a supplied link
// references a zone id that is not in the layout.
var ErrZoneNotFound = layout.ErrZoneNotFound

var (
	ErrSelfLink         = errors.New("link connects a zone to itself")
	ErrUnknownIntensity = errors.New("unknown intensity")
	ErrInvalidWeight    = errors.New("custom weight must be a finite number >= 0")
)

// LinkError reports a supplied link that cannot be scored.
type LinkError struct {
	LinkID string
	ZoneID string
	Err    error
}

func (e *LinkError) Error() string {
	if e.ZoneID != "" {
		return fmt.Sprintf("link %s: zone %q: %v", e.LinkID, e.ZoneID, e.Err)
	}
	return fmt.Sprintf("link %s: %v", e.LinkID, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// LinkPolicy decides what happens to a supplied link that cannot be scored.
type LinkPolicy string

const (
	// LinkPolicyReject fails the whole assessment.
	LinkPolicyReject LinkPolicy = "reject"
	// LinkPolicySkip drops the link, logs a warning and reports it in
	// EfficiencyReport.SkippedLinks.
	LinkPolicySkip LinkPolicy = "skip"
)

func (p LinkPolicy) Valid() bool {
	return p == LinkPolicyReject || p == LinkPolicySkip
}

// Options configures an Engine. Zero fields fall back to DefaultOptions.
type Options struct {
	Matrix           collab.Matrix
	Weights          psysafety.Weights
	IntensityWeights allen.IntensityWeights
	LinkPolicy       LinkPolicy

	// Source labels metrics (cli, api, watch).
	Source  string
	Logger  *slog.Logger
	Metrics *observe.Metrics
	Now     func() time.Time
}

// DefaultOptions returns the stock matrix, weight profile and reject policy.
func DefaultOptions() Options {
	return Options{
		Matrix:           collab.DefaultMatrix(),
		Weights:          psysafety.DefaultWeightSet(),
		IntensityWeights: allen.DefaultIntensityWeights(),
		LinkPolicy:       LinkPolicyReject,
		Source:           "engine",
		Now:              time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Matrix.IsZero() {
		o.Matrix = d.Matrix
	}
	if o.Weights.Base == nil {
		o.Weights.Base = d.Weights.Base
	}
	if o.Weights.Adjustments == nil {
		o.Weights.Adjustments = d.Weights.Adjustments
	}
	if o.IntensityWeights == (allen.IntensityWeights{}) {
		o.IntensityWeights = d.IntensityWeights
	}
	if o.LinkPolicy == "" {
		o.LinkPolicy = d.LinkPolicy
	}
	if o.Source == "" {
		o.Source = d.Source
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}
