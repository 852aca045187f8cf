package allen

import (
	"errors"
	"math"
	"testing"
	"time"

	"floorsense/internal/layout"
	"floorsense/internal/rating"
)

func square(id string, x, y float64) layout.Zone {
	return layout.Zone{
		ID:       id,
		Name:     "Zone " + id,
		Type:     layout.ZoneWorkspace,
		Position: layout.Position{X: x, Y: y},
		Size:     layout.Size{Width: 2, Height: 2},
	}
}

func link(id, a, b string, i layout.Intensity) layout.CollaborationLink {
	return layout.CollaborationLink{ID: id, SourceZoneID: a, TargetZoneID: b, Intensity: i}
}

func fixedModel() Model {
	m := NewModel()
	m.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return m
}

func TestRawEfficiencyDecreasesFromHundred(t *testing.T) {
	if RawEfficiency(0) != 100 {
		t.Fatalf("RawEfficiency(0) = %v, want 100", RawEfficiency(0))
	}
	prev := RawEfficiency(0)
	for d := 0.5; d <= 200; d += 0.5 {
		cur := RawEfficiency(d)
		if cur <= 0 || cur > 100 {
			t.Fatalf("RawEfficiency(%v) = %v outside (0,100]", d, cur)
		}
		if cur >= prev {
			t.Fatalf("RawEfficiency not strictly decreasing at %v", d)
		}
		prev = cur
	}
}

func TestStatusBoundaries(t *testing.T) {
	cases := []struct {
		eff  float64
		want Status
	}{
		{80, StatusOptimal},
		{79.9, StatusAcceptable},
		{60, StatusAcceptable},
		{59.9, StatusWarning},
		{40, StatusWarning},
		{39.9, StatusCritical},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.eff); got != tc.want {
			t.Errorf("StatusFor(%v) = %s, want %s", tc.eff, got, tc.want)
		}
	}
}

func TestTenUnitsHighIntensityIsCritical(t *testing.T) {
	zones := []layout.Zone{square("a", 0, 0), square("b", 10, 0)}
	report, err := fixedModel().Assess(zones, []layout.CollaborationLink{link("l", "a", "b", layout.IntensityHigh)})
	if err != nil {
		t.Fatal(err)
	}
	la := report.Links[0]
	if la.Distance != 10 {
		t.Fatalf("distance = %v, want 10", la.Distance)
	}
	if math.Abs(la.Efficiency-36.8) > 0.05 {
		t.Fatalf("efficiency = %v, want ~36.8", la.Efficiency)
	}
	if la.Status != StatusCritical {
		t.Fatalf("status = %s, want critical", la.Status)
	}
	if len(report.Recommendations) != 1 || report.Recommendations[0].Priority != rating.PriorityHigh {
		t.Fatalf("expected one high recommendation, got %+v", report.Recommendations)
	}
	if got := report.Recommendations[0].EstimatedImprovement; math.Abs(got-23.2) > 0.05 {
		t.Fatalf("improvement = %v, want ~23.2", got)
	}
}

func TestCoincidentMediumIsAcceptable(t *testing.T) {
	zones := []layout.Zone{square("a", 3, 3), square("b", 3, 3)}
	report, err := fixedModel().Assess(zones, []layout.CollaborationLink{link("l", "a", "b", layout.IntensityMedium)})
	if err != nil {
		t.Fatal(err)
	}
	la := report.Links[0]
	if la.Efficiency != 70 || la.Status != StatusAcceptable {
		t.Fatalf("got efficiency %v status %s, want 70 acceptable", la.Efficiency, la.Status)
	}
}

func TestStatusUsesUnroundedEfficiency(t *testing.T) {
	zones := map[string]layout.Zone{"a": square("a", 3, 3), "b": square("b", 3, 3)}
	w := 0.7996
	l := link("l", "a", "b", layout.IntensityHigh)
	l.CustomWeight = &w
	la, err := AssessLink(l, zones, DefaultIntensityWeights())
	if err != nil {
		t.Fatal(err)
	}
	if la.Efficiency != 80 {
		t.Fatalf("efficiency = %v, want 80 after rounding", la.Efficiency)
	}
	if la.Status != StatusAcceptable {
		t.Fatalf("status = %s, want acceptable for an unrounded 79.96", la.Status)
	}
}

func TestCustomWeightCapsAtHundred(t *testing.T) {
	w := 3.0
	l := link("l", "a", "b", layout.IntensityHigh)
	l.CustomWeight = &w
	zones := map[string]layout.Zone{"a": square("a", 0, 0), "b": square("b", 1, 0)}
	la, err := AssessLink(l, zones, DefaultIntensityWeights())
	if err != nil {
		t.Fatal(err)
	}
	if la.Efficiency != 100 {
		t.Fatalf("efficiency = %v, want capped 100", la.Efficiency)
	}
}

func TestNoLinksScoresZero(t *testing.T) {
	report, err := fixedModel().Assess([]layout.Zone{square("solo", 0, 0)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Links) != 0 || report.OverallScore != 0 {
		t.Fatalf("got %d links score %v, want none and 0", len(report.Links), report.OverallScore)
	}
	if report.SafetyLevel != rating.LevelCritical {
		t.Fatalf("level = %s, want critical", report.SafetyLevel)
	}
}

func TestUniformLinksScoreEqualsLinkEfficiency(t *testing.T) {
	zones := []layout.Zone{square("a", 0, 0), square("b", 5, 0), square("c", 0, 20), square("d", 5, 20)}
	links := []layout.CollaborationLink{
		link("ab", "a", "b", layout.IntensityHigh),
		link("cd", "c", "d", layout.IntensityHigh),
	}
	report, err := fixedModel().Assess(zones, links)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(report.OverallScore-report.Links[0].Efficiency) > 0.5 {
		t.Fatalf("overall %v should equal link efficiency %v", report.OverallScore, report.Links[0].Efficiency)
	}
}

func TestUnknownZoneFails(t *testing.T) {
	_, err := fixedModel().Assess([]layout.Zone{square("a", 0, 0)}, []layout.CollaborationLink{link("l", "a", "ghost", layout.IntensityLow)})
	if !errors.Is(err, layout.ErrZoneNotFound) {
		t.Fatalf("err = %v, want ErrZoneNotFound", err)
	}
}

func TestHubWithCriticalLinksGetsClusterRecommendation(t *testing.T) {
	zones := []layout.Zone{square("h", 0, 0), square("a", 30, 0), square("b", 0, 30), square("c", 30, 30)}
	links := []layout.CollaborationLink{
		link("ha", "h", "a", layout.IntensityHigh),
		link("hb", "h", "b", layout.IntensityHigh),
		link("hc", "h", "c", layout.IntensityHigh),
	}
	report, err := fixedModel().Assess(zones, links)
	if err != nil {
		t.Fatal(err)
	}
	var clusterRec *rating.Recommendation
	for i := range report.Recommendations {
		if report.Recommendations[i].Kind == rating.KindCluster {
			clusterRec = &report.Recommendations[i]
		}
	}
	if clusterRec == nil {
		t.Fatalf("expected a cluster recommendation: %+v", report.Recommendations)
	}
	if clusterRec.Priority != rating.PriorityHigh || clusterRec.EstimatedImprovement != 45 {
		t.Fatalf("cluster = %+v, want high priority 45 points", clusterRec)
	}
	if rating.ZoneKey(*clusterRec) != "a|b|c|h" {
		t.Fatalf("cluster zones = %v", clusterRec.AffectedZones)
	}
	if len(report.Recommendations) != 4 {
		t.Fatalf("recommendations = %d, want 4", len(report.Recommendations))
	}
}

func TestHighWarningLinkGetsMediumRecommendation(t *testing.T) {
	zones := []layout.Zone{square("a", 0, 0), square("b", 7, 0), square("c", 0, 3), square("d", 3, 4)}
	links := []layout.CollaborationLink{
		link("ab", "a", "b", layout.IntensityHigh),
		link("cd", "c", "d", layout.IntensityMedium),
	}
	report, err := fixedModel().Assess(zones, links)
	if err != nil {
		t.Fatal(err)
	}
	if report.Links[0].Status != StatusWarning {
		t.Fatalf("ab status = %s, want warning", report.Links[0].Status)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("recommendations = %+v, want only the high-intensity warning", report.Recommendations)
	}
	rec := report.Recommendations[0]
	if rec.Priority != rating.PriorityMedium || math.Abs(rec.EstimatedImprovement-(70-report.Links[0].Efficiency)) > 0.05 {
		t.Fatalf("unexpected recommendation %+v", rec)
	}
}

func TestRecommendationsAreCappedAndUnique(t *testing.T) {
	var zones []layout.Zone
	for i := 0; i < 6; i++ {
		zones = append(zones, square(string(rune('a'+i)), float64(i)*25, 0))
	}
	var links []layout.CollaborationLink
	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			links = append(links, link(zones[i].ID+zones[j].ID, zones[i].ID, zones[j].ID, layout.IntensityHigh))
		}
	}
	report, err := fixedModel().Assess(zones, links)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Recommendations) > rating.MaxRecommendations {
		t.Fatalf("recommendations = %d, want <= %d", len(report.Recommendations), rating.MaxRecommendations)
	}
	seen := make(map[string]bool)
	for _, r := range report.Recommendations {
		k := rating.ZoneKey(r)
		if seen[k] {
			t.Fatalf("duplicate key %s", k)
		}
		seen[k] = true
	}
}
