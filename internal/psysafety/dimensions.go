// Package psysafety scores how well a zone supports six dimensions of
// psychological safety, derived from its spatial factors.
package psysafety

import (
	"math"

	"floorsense/internal/spatial"
)

// Dimension is one of the six psychological-safety qualities a zone can support.
type Dimension string

const (
	Inclusion   Dimension = "inclusion"
	Learner     Dimension = "learner"
	Contributor Dimension = "contributor"
	Challenger  Dimension = "challenger"
	Restorative Dimension = "restorative"
	Privacy     Dimension = "privacy"
)

// Dimensions lists every dimension in report order.
func Dimensions() []Dimension {
	return []Dimension{Inclusion, Learner, Contributor, Challenger, Restorative, Privacy}
}

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	switch d {
	case Inclusion, Learner, Contributor, Challenger, Restorative, Privacy:
		return true
	}
	return false
}

const (
	fullArea       = 50.0
	sufficientArea = 20.0
	fewNeighbours  = 2
	neighbourSpan  = 4.0

	// suggestionThreshold is the factor value below which a factor's
	// suggestion is attached to its dimension.
	suggestionThreshold = 0.5
)

// Input is what a factor reads: the zone's spatial factors plus the layout
// diagonal used to normalize distances.
type Input struct {
	Factors  spatial.Factors
	Diagonal float64
}

// Factor is one weighted contribution to a dimension score. Value must
// return a number in [0,1]; Weight is in points so that the weights of one
// dimension sum to 100.
type Factor struct {
	Name        string
	Weight      float64
	Description string
	Suggestion  string
	Value       func(Input) float64
}

// Suggests reports whether the factor's suggestion applies at value v.
func (f Factor) Suggests(v float64) bool {
	return f.Suggestion != "" && v < suggestionThreshold
}

var (
	accessibility = func(in Input) float64 { return in.Factors.Accessibility }
	openness      = func(in Input) float64 { return in.Factors.Openness }
	centrality    = func(in Input) float64 { return in.Factors.CentralityIndex }
	lowVisibility = func(in Input) float64 { return 1 - in.Factors.Visibility }
	lowOpenness   = func(in Input) float64 { return 1 - in.Factors.Openness }
	areaScore     = func(in Input) float64 { return math.Min(1, in.Factors.Area/fullArea) }
	enoughArea    = func(in Input) float64 { return math.Min(1, in.Factors.Area/sufficientArea) }
	squareness    = func(in Input) float64 { return inverse(in.Factors.AspectRatio) }
	privateCorner = func(in Input) float64 { return boolScore(in.Factors.HasPrivateCorner) }
	naturalLight  = func(in Input) float64 { return boolScore(in.Factors.HasNaturalLight) }

	nearEntrance = func(in Input) float64 { return 1 - entranceShare(in) }
	farEntrance  = entranceShare

	balancedVisibility = func(in Input) float64 {
		return math.Max(0, 1-2*math.Abs(in.Factors.Visibility-0.5))
	}
	hasNeighbours = func(in Input) float64 {
		return boolScore(len(in.Factors.NeighboringZones) > 0)
	}
	sparseNeighbours = func(in Input) float64 {
		n := len(in.Factors.NeighboringZones)
		if n <= fewNeighbours {
			return 1
		}
		return math.Max(0, 1-float64(n-fewNeighbours)/neighbourSpan)
	}
)

var factorTable = map[Dimension][]Factor{
	Inclusion: {
		{"accessibility", 30, "How easily people reach the zone from an entrance", "Improve the route from the entrance so newcomers can find this zone", accessibility},
		{"openness", 25, "Open sight lines and adjacency to open areas", "Open the zone up toward neighbouring common areas", openness},
		{"centrality", 20, "Closeness to the middle of the floor", "Move the zone toward the center of the floor", centrality},
		{"proximity_to_entrance", 15, "Short walk from the nearest entrance", "Bring the zone closer to an entrance", nearEntrance},
		{"balanced_aspect_ratio", 10, "Balanced proportions with no long corridors", "Reshape the zone toward more even proportions", squareness},
	},
	Learner: {
		{"area", 25, "Room to experiment without crowding", "Give the zone more floor area for hands-on work", areaScore},
		{"private_corner", 25, "A corner where people can ask questions out of sight", "Add a semi-private corner for questions and pairing", privateCorner},
		{"balanced_visibility", 20, "Visible enough to find help, not so exposed it feels watched", "Balance the zone's visibility with partial screening or a more central spot", balancedVisibility},
		{"natural_light", 15, "Daylight from an outer wall", "Place the zone along an outer wall for daylight", naturalLight},
		{"has_neighbours", 15, "Nearby zones to learn from", "Locate the zone next to related teams", hasNeighbours},
	},
	Contributor: {
		{"area", 25, "Space for everyone to join in", "Enlarge the zone so everyone can take part", areaScore},
		{"square_aspect_ratio", 30, "Near-square shape that keeps everyone in the conversation", "Make the zone closer to square so no one sits at the far end", squareness},
		{"openness", 25, "Open, approachable setting", "Reduce partitions so the zone feels approachable", openness},
		{"centrality", 20, "Central position in the floor", "Move the zone closer to the center of activity", centrality},
	},
	Challenger: {
		{"low_visibility", 35, "Shielded from passers-by so dissent feels safe", "Screen the zone from main circulation paths", lowVisibility},
		{"private_corner", 30, "An enclosed spot for candid discussion", "Provide an enclosed corner for candid conversations", privateCorner},
		{"sufficient_area", 20, "Enough room for a small group to debate", "Enlarge the zone to fit a small discussion group", enoughArea},
		{"few_neighbours", 15, "Few adjacent zones that could overhear", "Separate the zone from busy neighbouring areas", sparseNeighbours},
	},
	Restorative: {
		{"natural_light", 30, "Daylight from an outer wall", "Move the zone to an outer wall with daylight", naturalLight},
		{"area", 25, "Room to step back and breathe", "Give the zone more space to unwind", areaScore},
		{"low_visibility", 25, "Out of sight from busy areas", "Shield the zone from high-traffic areas", lowVisibility},
		{"private_corner", 20, "A quiet corner to retreat to", "Add a quiet corner for recovery", privateCorner},
	},
	Privacy: {
		{"low_visibility", 30, "Hidden from general view", "Reduce sight lines into the zone", lowVisibility},
		{"low_openness", 25, "Enclosed by walls or partitions", "Add walls or partitions around the zone", lowOpenness},
		{"private_corner", 25, "An enclosed private spot", "Add an enclosed space for private conversations", privateCorner},
		{"distance_from_entrance", 20, "Away from entrance traffic", "Move the zone away from the entrance", farEntrance},
	},
}

// Factors returns the factor table of a dimension. The returned slice is a copy.
func Factors(d Dimension) []Factor {
	return append([]Factor(nil), factorTable[d]...)
}

func entranceShare(in Input) float64 {
	if in.Diagonal <= 0 {
		return 0
	}
	return math.Min(1, in.Factors.ProximityToEntrance/in.Diagonal)
}

func inverse(ar float64) float64 {
	if ar <= 0 || math.IsInf(ar, 0) || math.IsNaN(ar) {
		return 0
	}
	return math.Min(1, 1/ar)
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
