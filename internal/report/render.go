// Package report renders, stores and compares assessment reports.
package report

import (
	"fmt"
	"strings"

	"floorsense/internal/assess"
	"floorsense/internal/rating"
)

// Text renders a deterministic plain-text view of r. The assessment
// timestamp is left out so that two renderings of the same layout compare
// equal.
func Text(r assess.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Layout: %s\n", r.Layout)
	fmt.Fprintln(&b)

	eff := r.Efficiency
	fmt.Fprintf(&b, "Communication efficiency: %.0f/100 (%s)\n", eff.OverallScore, eff.SafetyLevel)
	for _, la := range eff.Links {
		origin := "supplied"
		if la.Link.AutoInferred {
			origin = "inferred"
		}
		fmt.Fprintf(&b, "  %s <-> %s  %-6s  distance=%.1f  efficiency=%.1f  %s  (%s)\n",
			la.Link.SourceZoneID, la.Link.TargetZoneID, la.Link.Intensity,
			la.Distance, la.Efficiency, la.Status, origin)
	}
	for _, s := range eff.SkippedLinks {
		fmt.Fprintf(&b, "  skipped %s: %s\n", s.Link.ID, s.Reason)
	}
	writeRecommendations(&b, "Efficiency recommendations", eff.Recommendations)
	fmt.Fprintln(&b)

	safety := r.Safety
	fmt.Fprintf(&b, "Psychological safety: %.0f/100 (%s)\n", safety.OverallScore, safety.SafetyLevel)
	fmt.Fprintf(&b, "  %s\n", safety.Summary)
	for _, z := range safety.ZoneAssessments {
		fmt.Fprintf(&b, "  %s [%s] %.0f (%s)\n", z.ZoneName, z.ZoneID, z.OverallScore, z.SafetyLevel)
		parts := make([]string, 0, len(z.Dimensions))
		for _, d := range z.Dimensions {
			parts = append(parts, fmt.Sprintf("%s=%.1f", d.Dimension, d.Score))
		}
		fmt.Fprintf(&b, "    %s\n", strings.Join(parts, " "))
	}
	writeRecommendations(&b, "Top recommendations", safety.TopRecommendations)
	return b.String()
}

func writeRecommendations(b *strings.Builder, title string, recs []rating.Recommendation) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for i, r := range recs {
		fmt.Fprintf(b, "  %d. [%s] %s (+%.1f)\n", i+1, r.Priority, r.Message, r.EstimatedImprovement)
	}
}
