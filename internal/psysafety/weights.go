package psysafety

import (
	"fmt"
	"math"

	"floorsense/internal/layout"
)

// WeightProfile assigns each dimension its share of a zone's overall score.
type WeightProfile map[Dimension]float64

// DefaultWeights is the base profile applied before zone-type overrides.
func DefaultWeights() WeightProfile {
	return WeightProfile{
		Inclusion:   0.20,
		Learner:     0.20,
		Contributor: 0.20,
		Challenger:  0.15,
		Restorative: 0.15,
		Privacy:     0.10,
	}
}

// TypeAdjustments overrides individual dimension weights per zone type.
type TypeAdjustments map[layout.ZoneType]WeightProfile

// DefaultTypeAdjustments returns the built-in per-type overrides.
func DefaultTypeAdjustments() TypeAdjustments {
	return TypeAdjustments{
		layout.ZoneMeeting:   {Contributor: 0.25, Challenger: 0.20, Privacy: 0.15},
		layout.ZoneEntrance:  {Inclusion: 0.35},
		layout.ZoneWorkspace: {Contributor: 0.25, Learner: 0.25},
		layout.ZoneLab:       {Learner: 0.30, Challenger: 0.20},
		layout.ZoneLounge:    {Restorative: 0.30, Inclusion: 0.25},
	}
}

// With returns a copy of a with the entries of b layered on top; b wins per
// zone type and dimension.
func (a TypeAdjustments) With(b TypeAdjustments) TypeAdjustments {
	out := make(TypeAdjustments, len(a)+len(b))
	for t, p := range a {
		out[t] = p.Merge(nil)
	}
	for t, p := range b {
		out[t] = out[t].Merge(p)
	}
	return out
}

// Merge returns a copy of p with the entries of o overriding it.
func (p WeightProfile) Merge(o WeightProfile) WeightProfile {
	out := make(WeightProfile, len(p)+len(o))
	for d, w := range p {
		out[d] = w
	}
	for d, w := range o {
		out[d] = w
	}
	return out
}

// Normalize rescales the six dimension weights so that they sum to 1.
// Dimensions missing from p weigh 0; an all-zero profile becomes uniform.
func (p WeightProfile) Normalize() WeightProfile {
	var sum float64
	for _, d := range Dimensions() {
		sum += p[d]
	}
	out := make(WeightProfile, len(Dimensions()))
	for _, d := range Dimensions() {
		if sum <= 0 {
			out[d] = 1 / float64(len(Dimensions()))
			continue
		}
		out[d] = p[d] / sum
	}
	return out
}

// Validate rejects unknown dimensions and negative or non-finite weights.
func (p WeightProfile) Validate() error {
	for d, w := range p {
		if !d.Valid() {
			return fmt.Errorf("unknown dimension %q", d)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("dimension %s: weight %v must be a finite number >= 0", d, w)
		}
	}
	return nil
}

// Weights resolves the normalized profile for a zone type.
type Weights struct {
	Base        WeightProfile
	Adjustments TypeAdjustments
}

// DefaultWeightSet pairs the default base profile with the default type overrides.
func DefaultWeightSet() Weights {
	return Weights{Base: DefaultWeights(), Adjustments: DefaultTypeAdjustments()}
}

// For returns the normalized weights for zone type t.
func (w Weights) For(t layout.ZoneType) WeightProfile {
	base := w.Base
	if base == nil {
		base = DefaultWeights()
	}
	return base.Merge(w.Adjustments[t]).Normalize()
}
