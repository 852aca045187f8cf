package rating

import (
	"fmt"
	"testing"
)

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  SafetyLevel
	}{
		{100, LevelExcellent},
		{85, LevelExcellent},
		{84.99, LevelGood},
		{70, LevelGood},
		{69.99, LevelModerate},
		{55, LevelModerate},
		{54.99, LevelNeedsImprovement},
		{40, LevelNeedsImprovement},
		{39.99, LevelCritical},
		{0, LevelCritical},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.score); got != tc.want {
			t.Errorf("LevelFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestFinalizeSortsDedupesAndCaps(t *testing.T) {
	recs := []Recommendation{
		{Priority: PriorityMedium, AffectedZones: []string{"a", "b"}, EstimatedImprovement: 50},
		{Priority: PriorityHigh, AffectedZones: []string{"c", "d"}, EstimatedImprovement: 10},
		{Priority: PriorityHigh, AffectedZones: []string{"b", "a"}, EstimatedImprovement: 20},
		{Priority: PriorityLow, AffectedZones: []string{"e"}, EstimatedImprovement: 99},
	}
	got := Finalize(recs, ZoneKey, MaxRecommendations)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
	if ZoneKey(got[0]) != "a|b" || got[0].Priority != PriorityHigh {
		t.Fatalf("first = %+v, want high a|b", got[0])
	}
	if ZoneKey(got[1]) != "c|d" {
		t.Fatalf("second = %+v, want c|d", got[1])
	}
	if got[2].Priority != PriorityLow {
		t.Fatalf("third = %+v, want low", got[2])
	}
}

func TestFinalizeNeverExceedsLimit(t *testing.T) {
	var recs []Recommendation
	for i := 0; i < 20; i++ {
		recs = append(recs, Recommendation{
			Priority:             PriorityHigh,
			AffectedZones:        []string{fmt.Sprintf("z%d", i)},
			EstimatedImprovement: float64(i),
		})
	}
	got := Finalize(recs, ZoneKey, MaxRecommendations)
	if len(got) != MaxRecommendations {
		t.Fatalf("len = %d, want %d", len(got), MaxRecommendations)
	}
	if got[0].EstimatedImprovement != 19 {
		t.Fatalf("largest improvement should come first, got %v", got[0].EstimatedImprovement)
	}
}

func TestClampAndRound(t *testing.T) {
	if Clamp(-3) != 0 || Clamp(140) != 100 || Clamp(42) != 42 {
		t.Fatal("clamp out of range")
	}
	if Round1(36.7879) != 36.8 {
		t.Fatalf("Round1 = %v", Round1(36.7879))
	}
}
