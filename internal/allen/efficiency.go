// Package allen scores communication efficiency between zones using the
// Allen curve: communication probability decays exponentially with the
// physical distance between people.
package allen

import (
	"fmt"
	"math"

	"floorsense/internal/layout"
	"floorsense/internal/rating"
)

// Decay is the exponential decay constant α per layout unit.
const Decay = 0.1

const (
	optimalThreshold    = 80.0
	acceptableThreshold = 60.0
	warningThreshold    = 40.0
)

// Status buckets a link efficiency.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusAcceptable Status = "acceptable"
	StatusWarning    Status = "warning"
	StatusCritical   Status = "critical"
)

// StatusFor buckets an efficiency: ≥80 optimal, ≥60 acceptable, ≥40 warning,
// else critical.
func StatusFor(efficiency float64) Status {
	switch {
	case efficiency >= optimalThreshold:
		return StatusOptimal
	case efficiency >= acceptableThreshold:
		return StatusAcceptable
	case efficiency >= warningThreshold:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// IntensityWeights maps each intensity to the share of raw efficiency a link
// of that intensity is credited with.
type IntensityWeights struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
	Low    float64 `yaml:"low" json:"low"`
}

// DefaultIntensityWeights returns {high: 1.0, medium: 0.7, low: 0.4}.
func DefaultIntensityWeights() IntensityWeights {
	return IntensityWeights{High: 1.0, Medium: 0.7, Low: 0.4}
}

// Of returns the weight for an intensity. Unknown intensities weigh as low.
func (w IntensityWeights) Of(i layout.Intensity) float64 {
	switch i {
	case layout.IntensityHigh:
		return w.High
	case layout.IntensityMedium:
		return w.Medium
	default:
		return w.Low
	}
}

// RawEfficiency is e^(−α·d) × 100: 100 at distance 0, strictly decreasing.
func RawEfficiency(distance float64) float64 {
	return math.Exp(-Decay*distance) * 100
}

// WeightedEfficiency scales the raw efficiency by intensity and custom
// weights, capped at 100.
func WeightedEfficiency(distance, intensityWeight, customWeight float64) float64 {
	return rating.Clamp(RawEfficiency(distance) * intensityWeight * customWeight)
}

// LinkAssessment is the scored state of one link.
type LinkAssessment struct {
	Link       layout.CollaborationLink `json:"link"`
	Distance   float64                  `json:"distance"`
	Efficiency float64                  `json:"efficiency"`
	Status     Status                   `json:"status"`
}

// AssessLink scores a single link. Both endpoints must exist in zones.
func AssessLink(link layout.CollaborationLink, zones map[string]layout.Zone, weights IntensityWeights) (LinkAssessment, error) {
	source, ok := zones[link.SourceZoneID]
	if !ok {
		return LinkAssessment{}, fmt.Errorf("link %s source %q: %w", link.ID, link.SourceZoneID, layout.ErrZoneNotFound)
	}
	target, ok := zones[link.TargetZoneID]
	if !ok {
		return LinkAssessment{}, fmt.Errorf("link %s target %q: %w", link.ID, link.TargetZoneID, layout.ErrZoneNotFound)
	}

	distance := layout.ZoneDistance(source, target)
	efficiency := WeightedEfficiency(distance, weights.Of(link.Intensity), link.Weight())
	// Status comes from the exact value; only the reported number is rounded.
	return LinkAssessment{
		Link:       link,
		Distance:   rating.Round1(distance),
		Efficiency: rating.Round1(efficiency),
		Status:     StatusFor(efficiency),
	}, nil
}
