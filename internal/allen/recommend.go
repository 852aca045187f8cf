package allen

import (
	"fmt"

	"floorsense/internal/layout"
	"floorsense/internal/rating"
)

const (
	// highWarningTarget is the efficiency a high-intensity warning link
	// should be raised to.
	highWarningTarget = 70.0

	clusterCriticalTrigger = 2
	clusterWarningTrigger  = 3
	clusterRelatedLimit    = 3
	clusterCriticalPoints  = 15.0
	clusterWarningPoints   = 8.0
)

type zoneTally struct {
	critical int
	warning  int
	related  []string
}

// Recommend emits move-closer recommendations for critical links and for
// high-intensity warning links, plus cluster recommendations for zones that
// take part in many poor links. The result is ranked, deduplicated by the
// sorted affected-zone key and capped.
func Recommend(links []LinkAssessment, zones map[string]layout.Zone) []rating.Recommendation {
	var recs []rating.Recommendation
	tallies := make(map[string]*zoneTally)
	var order []string

	tally := func(zoneID, partner string, st Status) {
		t, ok := tallies[zoneID]
		if !ok {
			t = &zoneTally{}
			tallies[zoneID] = t
			order = append(order, zoneID)
		}
		if st == StatusCritical {
			t.critical++
		} else {
			t.warning++
		}
		for _, r := range t.related {
			if r == partner {
				return
			}
		}
		t.related = append(t.related, partner)
	}

	for _, la := range links {
		src, dst := la.Link.SourceZoneID, la.Link.TargetZoneID
		switch la.Status {
		case StatusCritical:
			recs = append(recs, moveCloser(la, zones, rating.PriorityHigh, acceptableThreshold))
		case StatusWarning:
			if la.Link.Intensity == layout.IntensityHigh {
				recs = append(recs, moveCloser(la, zones, rating.PriorityMedium, highWarningTarget))
			}
		default:
			continue
		}
		tally(src, dst, la.Status)
		tally(dst, src, la.Status)
	}

	for _, zoneID := range order {
		t := tallies[zoneID]
		if t.critical < clusterCriticalTrigger && t.warning < clusterWarningTrigger {
			continue
		}
		recs = append(recs, cluster(zoneID, t, zones))
	}

	return rating.Finalize(recs, rating.ZoneKey, rating.MaxRecommendations)
}

func moveCloser(la LinkAssessment, zones map[string]layout.Zone, p rating.Priority, target float64) rating.Recommendation {
	src, dst := la.Link.SourceZoneID, la.Link.TargetZoneID
	return rating.Recommendation{
		Priority: p,
		Kind:     rating.KindMoveCloser,
		Message: fmt.Sprintf("Move %s and %s closer together: %.1f units apart at %.1f%% efficiency (target %.0f%%)",
			zoneName(zones, src), zoneName(zones, dst), la.Distance, la.Efficiency, target),
		AffectedZones:        []string{src, dst},
		EstimatedImprovement: rating.Round1(target - la.Efficiency),
	}
}

func cluster(zoneID string, t *zoneTally, zones map[string]layout.Zone) rating.Recommendation {
	related := t.related
	if len(related) > clusterRelatedLimit {
		related = related[:clusterRelatedLimit]
	}
	affected := append([]string{zoneID}, related...)

	names := make([]string, 0, len(related))
	for _, id := range related {
		names = append(names, zoneName(zones, id))
	}

	p := rating.PriorityMedium
	if t.critical >= clusterCriticalTrigger {
		p = rating.PriorityHigh
	}
	return rating.Recommendation{
		Priority: p,
		Kind:     rating.KindCluster,
		Message: fmt.Sprintf("Cluster %s with %s: %d critical and %d warning links",
			zoneName(zones, zoneID), joinNames(names), t.critical, t.warning),
		AffectedZones:        affected,
		EstimatedImprovement: clusterCriticalPoints*float64(t.critical) + clusterWarningPoints*float64(t.warning),
	}
}

func zoneName(zones map[string]layout.Zone, id string) string {
	if z, ok := zones[id]; ok && z.Name != "" {
		return z.Name
	}
	return id
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "its partners"
	case 1:
		return names[0]
	}
	out := ""
	for i, n := range names {
		switch {
		case i == 0:
			out = n
		case i == len(names)-1:
			out += " and " + n
		default:
			out += ", " + n
		}
	}
	return out
}
