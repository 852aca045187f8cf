// Package spatial derives geometric and relational features of a zone from
// the layout it sits in. All functions are pure.
package spatial

import (
	"math"
	"sort"

	"floorsense/internal/layout"
)

const (
	// neighbourMargin is added to the larger half-extent of two zones when
	// deciding whether they are neighbours.
	neighbourMargin = 2.0
	// openNeighbourBonus is the maximum openness gained from open neighbours.
	openNeighbourBonus = 0.3
	// privateCornerArea is the minimum area that affords a private corner.
	privateCornerArea = 20.0

	meetingVisibilityDamping = 0.7
	entranceVisibilityFloor  = 0.95
)

// baseOpenness is the openness a zone type starts from before neighbour bonuses.
var baseOpenness = map[layout.ZoneType]float64{
	layout.ZoneEntrance:  0.9,
	layout.ZoneLounge:    0.8,
	layout.ZoneWorkspace: 0.7,
	layout.ZoneLab:       0.5,
	layout.ZoneMeeting:   0.4,
	layout.ZoneCompute:   0.3,
	layout.ZoneStorage:   0.2,
	layout.ZoneUtility:   0.2,
}

// Factors are the derived spatial features of one zone.
type Factors struct {
	Area                float64  `json:"area"`
	AspectRatio         float64  `json:"aspect_ratio"`
	Openness            float64  `json:"openness"`
	Visibility          float64  `json:"visibility"`
	Accessibility       float64  `json:"accessibility"`
	CentralityIndex     float64  `json:"centrality_index"`
	ProximityToEntrance float64  `json:"proximity_to_entrance"`
	NeighboringZones    []string `json:"neighboring_zones"`
	HasNaturalLight     bool     `json:"has_natural_light"`
	HasPrivateCorner    bool     `json:"has_private_corner"`
}

// Extract computes the spatial factors of zone within l. The layout must
// already have passed layout.Validate.
func Extract(zone layout.Zone, l layout.Layout) Factors {
	neighbours := Neighbours(zone, l.Zones)
	proximity := ProximityToEntrance(zone, l)

	return Factors{
		Area:                zone.Area(),
		AspectRatio:         zone.AspectRatio(),
		Openness:            Openness(zone, neighbours, l),
		Visibility:          Visibility(zone, l.Dimensions),
		Accessibility:       Accessibility(zone, l),
		CentralityIndex:     Centrality(zone, l.Dimensions),
		ProximityToEntrance: proximity,
		NeighboringZones:    neighbours,
		HasNaturalLight:     zone.TouchesBoundary(l.Dimensions),
		HasPrivateCorner:    zone.Area() >= privateCornerArea || zone.Type == layout.ZoneMeeting,
	}
}

// Neighbours returns the sorted ids of zones whose centers lie closer than
// the larger of the two half-extents plus a fixed margin.
func Neighbours(zone layout.Zone, zones []layout.Zone) []string {
	ids := []string{}
	for _, other := range zones {
		if other.ID == zone.ID {
			continue
		}
		limit := math.Max(zone.HalfExtent(), other.HalfExtent()) + neighbourMargin
		if layout.ZoneDistance(zone, other) < limit {
			ids = append(ids, other.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Openness starts from the per-type base and gains up to openNeighbourBonus
// in proportion to the share of neighbours that are open zone types.
func Openness(zone layout.Zone, neighbours []string, l layout.Layout) float64 {
	openness := baseOpenness[zone.Type]
	if len(neighbours) > 0 {
		idx := l.ZoneIndex()
		open := 0
		for _, id := range neighbours {
			if isOpenType(idx[id].Type) {
				open++
			}
		}
		openness += openNeighbourBonus * float64(open) / float64(len(neighbours))
	}
	return clamp01(openness)
}

// Visibility falls off with the Manhattan distance of the zone center from
// the layout center. Meeting rooms are damped; entrances stay near 1.
func Visibility(zone layout.Zone, d layout.Dimensions) float64 {
	c := zone.Center()
	lc := d.Center()
	maxManhattan := d.Width/2 + d.Height/2
	v := 1 - (math.Abs(c.X-lc.X)+math.Abs(c.Y-lc.Y))/maxManhattan
	switch zone.Type {
	case layout.ZoneMeeting:
		v *= meetingVisibilityDamping
	case layout.ZoneEntrance:
		v = math.Max(v, entranceVisibilityFloor)
	}
	return clamp01(v)
}

// Accessibility measures how easily the zone is reached: from the nearest
// entrance when the layout has one, otherwise from the nearest outer edge.
func Accessibility(zone layout.Zone, l layout.Layout) float64 {
	if dist, ok := nearestEntrance(zone, l.Zones); ok {
		return clamp01(1 - dist/l.Dimensions.Diagonal())
	}
	c := zone.Center()
	d := l.Dimensions
	edge := math.Min(math.Min(c.X, d.Width-c.X), math.Min(c.Y, d.Height-c.Y))
	return clamp01(1 - edge/math.Min(d.Width, d.Height))
}

// Centrality is 1 at the layout center and 0 at its corners.
func Centrality(zone layout.Zone, d layout.Dimensions) float64 {
	maxDist := d.Diagonal() / 2
	return clamp01(1 - layout.Distance(zone.Center(), d.Center())/maxDist)
}

// ProximityToEntrance is the center distance to the nearest entrance zone,
// or the layout width when there is none.
func ProximityToEntrance(zone layout.Zone, l layout.Layout) float64 {
	if dist, ok := nearestEntrance(zone, l.Zones); ok {
		return dist
	}
	return l.Dimensions.Width
}

// nearestEntrance includes the zone itself, so entrances are at distance 0.
func nearestEntrance(zone layout.Zone, zones []layout.Zone) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, other := range zones {
		if other.Type != layout.ZoneEntrance {
			continue
		}
		found = true
		if other.ID == zone.ID {
			return 0, true
		}
		best = math.Min(best, layout.ZoneDistance(zone, other))
	}
	return best, found
}

func isOpenType(t layout.ZoneType) bool {
	return t == layout.ZoneEntrance || t == layout.ZoneWorkspace
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
