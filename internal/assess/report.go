package assess

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"floorsense/internal/allen"
	"floorsense/internal/layout"
	"floorsense/internal/psysafety"
	"floorsense/internal/rating"
)

// SkippedLink is a supplied link dropped under LinkPolicySkip.
type SkippedLink struct {
	Link   layout.CollaborationLink `json:"link"`
	Reason string                   `json:"reason"`
}

// EfficiencyReport is the communication efficiency report of a layout.
type EfficiencyReport struct {
	allen.Assessment
	SkippedLinks []SkippedLink `json:"skipped_links,omitempty"`
}

// SafetyReport is the psychological safety report of a layout.
type SafetyReport struct {
	ZoneAssessments    []psysafety.ZoneSafety  `json:"zone_assessments"`
	OverallScore       float64                 `json:"overall_score"`
	SafetyLevel        rating.SafetyLevel      `json:"safety_level"`
	Summary            string                  `json:"summary"`
	TopRecommendations []rating.Recommendation `json:"top_recommendations"`
	AssessedAt         time.Time               `json:"assessed_at"`
}

// Zone returns the assessment of zone id, if present.
func (r SafetyReport) Zone(id string) (psysafety.ZoneSafety, bool) {
	for _, z := range r.ZoneAssessments {
		if z.ZoneID == id {
			return z, true
		}
	}
	return psysafety.ZoneSafety{}, false
}

func (e *Engine) efficiency(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) (EfficiencyReport, error) {
	links, skipped, err := e.links(ctx, l, supplied)
	if err != nil {
		return EfficiencyReport{}, err
	}
	a, err := e.model.Assess(l.Zones, links)
	if err != nil {
		return EfficiencyReport{}, fmt.Errorf("assess links of %s: %w", l.Name, err)
	}
	for _, la := range a.Links {
		e.opts.Metrics.RecordLink(ctx, string(la.Status), la.Efficiency)
	}
	for _, r := range a.Recommendations {
		e.opts.Metrics.RecordRecommendation(ctx, "efficiency", string(r.Priority))
	}
	return EfficiencyReport{Assessment: a, SkippedLinks: skipped}, nil
}

func (e *Engine) safety(ctx context.Context, l layout.Layout) SafetyReport {
	zones := make([]psysafety.ZoneSafety, 0, len(l.Zones))
	var sum float64
	for _, z := range l.Zones {
		zs := e.scorer.ScoreZone(z, l)
		zones = append(zones, zs)
		sum += zs.OverallScore
		e.opts.Metrics.RecordZoneScore(ctx, string(z.Type), zs.OverallScore)
	}

	var overall float64
	if len(zones) > 0 {
		overall = rating.Clamp(math.Round(sum / float64(len(zones))))
	}
	report := SafetyReport{
		ZoneAssessments:    zones,
		OverallScore:       overall,
		SafetyLevel:        rating.LevelFor(overall),
		TopRecommendations: TopRecommendations(zones),
		AssessedAt:         e.now(),
	}
	report.Summary = Summarize(l.Name, report)
	for _, r := range report.TopRecommendations {
		e.opts.Metrics.RecordRecommendation(ctx, "safety", string(r.Priority))
	}
	return report
}

// Summarize names the layout score and its best and worst zones. Ties go
// to the zone listed first.
func Summarize(name string, r SafetyReport) string {
	if name == "" {
		name = "Layout"
	}
	if len(r.ZoneAssessments) == 0 {
		return fmt.Sprintf("%s has no zones to assess.", name)
	}
	best, worst := r.ZoneAssessments[0], r.ZoneAssessments[0]
	for _, z := range r.ZoneAssessments[1:] {
		if z.OverallScore > best.OverallScore {
			best = z
		}
		if z.OverallScore < worst.OverallScore {
			worst = z
		}
	}
	return fmt.Sprintf("%s scores %.0f/100 (%s) across %d zones. Strongest zone: %s (%.0f). Weakest zone: %s (%.0f).",
		name, r.OverallScore, r.SafetyLevel, len(r.ZoneAssessments),
		displayName(best), best.OverallScore, displayName(worst), worst.OverallScore)
}

// TopRecommendations gathers the high-priority recommendations of every
// zone, worst-scoring zones first, deduplicated per zone and message and
// capped.
func TopRecommendations(zones []psysafety.ZoneSafety) []rating.Recommendation {
	type scored struct {
		rec   rating.Recommendation
		score float64
	}
	var all []scored
	for _, z := range zones {
		for _, r := range z.Recommendations {
			if r.Priority != rating.PriorityHigh {
				continue
			}
			r.Message = displayName(z) + ": " + r.Message
			all = append(all, scored{rec: r, score: z.OverallScore})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score < all[j].score })

	recs := make([]rating.Recommendation, 0, len(all))
	for _, s := range all {
		recs = append(recs, s.rec)
	}
	return rating.Dedupe(recs, topKey, rating.MaxRecommendations)
}

func topKey(r rating.Recommendation) string {
	return rating.ZoneKey(r) + "#" + r.Message
}

func displayName(z psysafety.ZoneSafety) string {
	if z.ZoneName != "" {
		return z.ZoneName
	}
	return z.ZoneID
}
