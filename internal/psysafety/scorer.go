package psysafety

import (
	"math"
	"time"

	"floorsense/internal/layout"
	"floorsense/internal/rating"
	"floorsense/internal/spatial"
)

// recommendationThreshold is the dimension score below which a dimension's
// suggestions become recommendations.
const recommendationThreshold = 60.0

const highPriorityThreshold = 40.0

// FactorContribution records how one factor moved a dimension score.
type FactorContribution struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description"`
}

// DimensionScore is the score of one dimension for one zone.
type DimensionScore struct {
	Dimension   Dimension            `json:"dimension"`
	Score       float64              `json:"score"`
	Weight      float64              `json:"weight"`
	Factors     []FactorContribution `json:"factors"`
	Suggestions []string             `json:"suggestions"`
}

// ZoneSafety is the per-zone psychological-safety report.
type ZoneSafety struct {
	ZoneID          string                  `json:"zone_id"`
	ZoneName        string                  `json:"zone_name"`
	OverallScore    float64                 `json:"overall_score"`
	SafetyLevel     rating.SafetyLevel      `json:"safety_level"`
	Dimensions      []DimensionScore        `json:"dimensions"`
	SpatialFactors  spatial.Factors         `json:"spatial_factors"`
	Recommendations []rating.Recommendation `json:"recommendations"`
	LastAssessedAt  time.Time               `json:"last_assessed_at"`
}

// Dimension returns the score for d, if present.
func (z ZoneSafety) Dimension(d Dimension) (DimensionScore, bool) {
	for _, ds := range z.Dimensions {
		if ds.Dimension == d {
			return ds, true
		}
	}
	return DimensionScore{}, false
}

// Scorer turns spatial factors into dimension scores. Use NewScorer for the
// default weights.
type Scorer struct {
	Weights Weights
	Now     func() time.Time
}

func NewScorer() Scorer {
	return Scorer{Weights: DefaultWeightSet(), Now: time.Now}
}

// ScoreZone extracts the spatial factors of zone and scores all six
// dimensions. The layout must already be valid.
func (s Scorer) ScoreZone(zone layout.Zone, l layout.Layout) ZoneSafety {
	factors := spatial.Extract(zone, l)
	in := Input{Factors: factors, Diagonal: l.Dimensions.Diagonal()}
	weights := s.Weights.For(zone.Type)

	dims := make([]DimensionScore, 0, len(Dimensions()))
	var sum, total float64
	for _, d := range Dimensions() {
		ds := ScoreDimension(d, in, weights[d])
		dims = append(dims, ds)
		sum += ds.Score * ds.Weight
		total += ds.Weight
	}

	var overall float64
	if total > 0 {
		overall = rating.Clamp(math.Round(sum / total))
	}
	return ZoneSafety{
		ZoneID:          zone.ID,
		ZoneName:        zone.Name,
		OverallScore:    overall,
		SafetyLevel:     rating.LevelFor(overall),
		Dimensions:      dims,
		SpatialFactors:  factors,
		Recommendations: Recommend(zone.ID, dims, in),
		LastAssessedAt:  s.now(),
	}
}

// ScoreDimension evaluates the factor table of d. The score is the sum of
// factor values times their weights, clamped to [0,100].
func ScoreDimension(d Dimension, in Input, weight float64) DimensionScore {
	ds := DimensionScore{Dimension: d, Weight: weight, Suggestions: []string{}}
	var score float64
	for _, f := range factorTable[d] {
		v := f.Value(in)
		c := v * f.Weight
		score += c
		ds.Factors = append(ds.Factors, FactorContribution{
			Name:         f.Name,
			Value:        v,
			Contribution: rating.Round1(c),
			Description:  f.Description,
		})
		if f.Suggests(v) {
			ds.Suggestions = append(ds.Suggestions, f.Suggestion)
		}
	}
	ds.Score = rating.Round1(rating.Clamp(score))
	return ds
}

func (s Scorer) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
