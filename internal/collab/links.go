// Package collab builds the set of collaboration links between zones.
package collab

import (
	"fmt"

	"floorsense/internal/layout"
)

// Generate returns exactly one link per unordered zone pair, in zone order.
// A supplied link for a pair, in either direction, is reused verbatim (the
// first one wins); missing pairs are synthesized from the matrix and marked
// auto-inferred. Supplied links that reference unknown zones are ignored
// here; callers validate them first.
func Generate(zones []layout.Zone, supplied []layout.CollaborationLink, m Matrix) []layout.CollaborationLink {
	byPair := make(map[string]layout.CollaborationLink, len(supplied))
	for _, link := range supplied {
		key := layout.PairKey(link.SourceZoneID, link.TargetZoneID)
		if _, exists := byPair[key]; exists {
			continue
		}
		byPair[key] = link
	}

	n := len(zones)
	links := make([]layout.CollaborationLink, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := zones[i], zones[j]
			if link, ok := byPair[layout.PairKey(a.ID, b.ID)]; ok {
				links = append(links, link)
				continue
			}
			links = append(links, Infer(a, b, m))
		}
	}
	return links
}

// Infer synthesizes a link between two zones from the intensity matrix.
func Infer(source, target layout.Zone, m Matrix) layout.CollaborationLink {
	return layout.CollaborationLink{
		ID:           InferredID(source.ID, target.ID),
		SourceZoneID: source.ID,
		TargetZoneID: target.ID,
		Intensity:    m.Lookup(source.Type, target.Type),
		AutoInferred: true,
	}
}

// InferredID is the deterministic id of a synthesized link.
func InferredID(source, target string) string {
	return fmt.Sprintf("auto-%s-%s", source, target)
}
