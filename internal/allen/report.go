package allen

import (
	"math"
	"time"

	"floorsense/internal/layout"
	"floorsense/internal/rating"
)

// Assessment is the layout-level communication efficiency report.
type Assessment struct {
	Links           []LinkAssessment        `json:"links"`
	OverallScore    float64                 `json:"overall_score"`
	SafetyLevel     rating.SafetyLevel      `json:"safety_level"`
	Recommendations []rating.Recommendation `json:"recommendations"`
	AssessedAt      time.Time               `json:"assessed_at"`
}

// Model scores a complete link set. The zero value is not usable; start from
// NewModel.
type Model struct {
	Weights IntensityWeights
	Now     func() time.Time
}

// NewModel returns a model with the default intensity weights.
func NewModel() Model {
	return Model{Weights: DefaultIntensityWeights(), Now: time.Now}
}

// Assess scores every link and aggregates them. The first link that
// references a missing zone aborts the call with an error wrapping
// layout.ErrZoneNotFound.
func (m Model) Assess(zones []layout.Zone, links []layout.CollaborationLink) (Assessment, error) {
	idx := make(map[string]layout.Zone, len(zones))
	for _, z := range zones {
		idx[z.ID] = z
	}

	assessed := make([]LinkAssessment, 0, len(links))
	for _, link := range links {
		la, err := AssessLink(link, idx, m.Weights)
		if err != nil {
			return Assessment{}, err
		}
		assessed = append(assessed, la)
	}

	overall := m.OverallScore(assessed)
	return Assessment{
		Links:           assessed,
		OverallScore:    overall,
		SafetyLevel:     rating.LevelFor(overall),
		Recommendations: Recommend(assessed, idx),
		AssessedAt:      m.now(),
	}, nil
}

// OverallScore is the intensity-weighted mean efficiency, rounded. An empty
// link set scores 0.
func (m Model) OverallScore(links []LinkAssessment) float64 {
	var sum, weights float64
	for _, la := range links {
		w := m.Weights.Of(la.Link.Intensity)
		sum += la.Efficiency * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return rating.Clamp(math.Round(sum / weights))
}

func (m Model) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}
