// Package rating holds the vocabulary shared by both scoring models: the
// safety-level buckets, recommendation priorities and the rank/dedupe/cap
// pass applied to every recommendation list.
package rating

import (
	"math"
	"sort"

	"floorsense/internal/layout"
)

// MaxRecommendations caps every recommendation list.
const MaxRecommendations = 5

// SafetyLevel is the five-bucket qualitative label for a 0–100 score.
type SafetyLevel string

const (
	LevelExcellent        SafetyLevel = "excellent"
	LevelGood             SafetyLevel = "good"
	LevelModerate         SafetyLevel = "moderate"
	LevelNeedsImprovement SafetyLevel = "needs_improvement"
	LevelCritical         SafetyLevel = "critical"
)

// LevelFor buckets a score: ≥85 excellent, ≥70 good, ≥55 moderate,
// ≥40 needs_improvement, else critical.
func LevelFor(score float64) SafetyLevel {
	switch {
	case score >= 85:
		return LevelExcellent
	case score >= 70:
		return LevelGood
	case score >= 55:
		return LevelModerate
	case score >= 40:
		return LevelNeedsImprovement
	default:
		return LevelCritical
	}
}

// Rank orders levels from critical (0) to excellent (4).
func (l SafetyLevel) Rank() int {
	switch l {
	case LevelExcellent:
		return 4
	case LevelGood:
		return 3
	case LevelModerate:
		return 2
	case LevelNeedsImprovement:
		return 1
	default:
		return 0
	}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities so that high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Kind identifies which rule produced a recommendation.
type Kind string

const (
	KindMoveCloser Kind = "move_closer"
	KindCluster    Kind = "cluster"
	KindDimension  Kind = "dimension"
)

// Recommendation is a prioritized, textual suggestion with an estimated
// score improvement.
type Recommendation struct {
	Priority             Priority `json:"priority"`
	Kind                 Kind     `json:"kind"`
	Message              string   `json:"message"`
	AffectedZones        []string `json:"affected_zones"`
	Dimension            string   `json:"dimension,omitempty"`
	EstimatedImprovement float64  `json:"estimated_improvement"`
}

// ZoneKey is the sorted affected-zone key.
func ZoneKey(r Recommendation) string {
	return layout.SortedKey(r.AffectedZones)
}

// KeyFunc derives the deduplication key of a recommendation.
type KeyFunc func(Recommendation) string

// Finalize sorts by priority, then descending estimated improvement, then
// key; keeps the first recommendation per key; and caps the result at limit.
func Finalize(recs []Recommendation, key KeyFunc, limit int) []Recommendation {
	sorted := append([]Recommendation(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if a.EstimatedImprovement != b.EstimatedImprovement {
			return a.EstimatedImprovement > b.EstimatedImprovement
		}
		return key(a) < key(b)
	})
	return Dedupe(sorted, key, limit)
}

// Dedupe keeps the first recommendation per key, preserving order, and stops
// once limit entries are collected.
func Dedupe(recs []Recommendation, key KeyFunc, limit int) []Recommendation {
	out := make([]Recommendation, 0, min(len(recs), limit))
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if len(out) >= limit {
			break
		}
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Clamp limits v to [0,100]; NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
