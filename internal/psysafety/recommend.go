package psysafety

import (
	"floorsense/internal/rating"
)

// RecommendationKey identifies a zone recommendation by zone, dimension and
// message so that different zones never collapse into one entry.
func RecommendationKey(r rating.Recommendation) string {
	return rating.ZoneKey(r) + "#" + r.Dimension + "#" + r.Message
}

// Recommend turns the suggestions of every dimension scoring below 60 into
// ranked recommendations. Dimensions below 40 yield high priority.
func Recommend(zoneID string, dims []DimensionScore, in Input) []rating.Recommendation {
	var recs []rating.Recommendation
	for _, ds := range dims {
		if ds.Score >= recommendationThreshold {
			continue
		}
		p := rating.PriorityMedium
		if ds.Score < highPriorityThreshold {
			p = rating.PriorityHigh
		}
		for _, f := range factorTable[ds.Dimension] {
			v := f.Value(in)
			if !f.Suggests(v) {
				continue
			}
			recs = append(recs, rating.Recommendation{
				Priority:             p,
				Kind:                 rating.KindDimension,
				Message:              f.Suggestion,
				AffectedZones:        []string{zoneID},
				Dimension:            string(ds.Dimension),
				EstimatedImprovement: rating.Round1(f.Weight * (1 - v)),
			})
		}
	}
	return rating.Finalize(recs, RecommendationKey, rating.MaxRecommendations)
}
