package assess

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"floorsense/internal/collab"
	"floorsense/internal/layout"
	"floorsense/internal/observe"
	"floorsense/internal/rating"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func lobbyLayout() layout.Layout {
	return layout.Layout{
		Name:       "lobby",
		Dimensions: layout.Dimensions{Width: 20, Height: 20, Unit: "m"},
		Zones: []layout.Zone{
			{ID: "e", Name: "Lobby", Type: layout.ZoneEntrance, Position: layout.Position{X: 0, Y: 5}, Size: layout.Size{Width: 20, Height: 10}},
			{ID: "w", Name: "Desks", Type: layout.ZoneWorkspace, Position: layout.Position{X: 2, Y: 16}, Size: layout.Size{Width: 4, Height: 4}},
			{ID: "s", Name: "Store", Type: layout.ZoneStorage, Position: layout.Position{X: 15, Y: 0}, Size: layout.Size{Width: 2, Height: 2}},
		},
	}
}

func newEngine(t *testing.T, policy LinkPolicy) (*Engine, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	opts := DefaultOptions()
	opts.LinkPolicy = policy
	opts.Metrics = m
	opts.Now = func() time.Time { return fixedNow }
	return New(opts), reader
}

func link(id, a, b string, i layout.Intensity) layout.CollaborationLink {
	return layout.CollaborationLink{ID: id, SourceZoneID: a, TargetZoneID: b, Intensity: i}
}

func TestAssessIsDeterministic(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	l := lobbyLayout()

	first, err := e.Assess(context.Background(), l, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Assess(context.Background(), l, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated assessments of the same layout differ")
	}
	if !reflect.DeepEqual(l, lobbyLayout()) {
		t.Fatal("assessment mutated its input layout")
	}
}

func TestAssessGeneratesOneLinkPerPair(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	r, err := e.Assess(context.Background(), lobbyLayout(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Efficiency.Links) != 3 {
		t.Fatalf("links = %d, want 3", len(r.Efficiency.Links))
	}
	for _, la := range r.Efficiency.Links {
		if !la.Link.AutoInferred {
			t.Fatalf("link %s should be inferred", la.Link.ID)
		}
		if la.Efficiency < 0 || la.Efficiency > 100 || la.Distance < 0 {
			t.Fatalf("link %s out of range: %+v", la.Link.ID, la)
		}
	}
	if !r.AssessedAt.Equal(fixedNow) || !r.Efficiency.AssessedAt.Equal(fixedNow) {
		t.Fatalf("assessed at %v / %v", r.AssessedAt, r.Efficiency.AssessedAt)
	}
}

func TestReverseDuplicateLinkCollapses(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	supplied := []layout.CollaborationLink{
		link("ew", "e", "w", layout.IntensityHigh),
		link("we", "w", "e", layout.IntensityLow),
	}
	links, skipped, err := e.Links(context.Background(), lobbyLayout(), supplied)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 || len(links) != 3 {
		t.Fatalf("links = %d skipped = %d, want 3 and 0", len(links), len(skipped))
	}
	var found int
	for _, l := range links {
		if layout.PairKey(l.SourceZoneID, l.TargetZoneID) == "e|w" {
			found++
			if l.ID != "ew" || l.Intensity != layout.IntensityHigh {
				t.Fatalf("expected the first supplied link, got %+v", l)
			}
		}
	}
	if found != 1 {
		t.Fatalf("pair e|w appears %d times", found)
	}
}

func TestRejectPolicyFailsOnUnknownZone(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	_, err := e.Assess(context.Background(), lobbyLayout(), []layout.CollaborationLink{link("x", "e", "ghost", layout.IntensityHigh)})
	if !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("err = %v, want ErrZoneNotFound", err)
	}
	var le *LinkError
	if !errors.As(err, &le) || le.LinkID != "x" || le.ZoneID != "ghost" {
		t.Fatalf("err = %#v, want LinkError for ghost", err)
	}
}

func TestRejectPolicyFailsOnSelfLinkAndBadIntensity(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	_, err := e.Assess(context.Background(), lobbyLayout(), []layout.CollaborationLink{link("self", "e", "e", layout.IntensityHigh)})
	if !errors.Is(err, ErrSelfLink) {
		t.Fatalf("err = %v, want ErrSelfLink", err)
	}
	_, err = e.Assess(context.Background(), lobbyLayout(), []layout.CollaborationLink{link("bad", "e", "w", "extreme")})
	if !errors.Is(err, ErrUnknownIntensity) {
		t.Fatalf("err = %v, want ErrUnknownIntensity", err)
	}
}

func TestSkipPolicyDropsInvalidLinks(t *testing.T) {
	e, reader := newEngine(t, LinkPolicySkip)
	supplied := []layout.CollaborationLink{
		link("x", "e", "ghost", layout.IntensityHigh),
		link("ew", "e", "w", layout.IntensityHigh),
	}
	r, err := e.Assess(context.Background(), lobbyLayout(), supplied)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Efficiency.SkippedLinks) != 1 || r.Efficiency.SkippedLinks[0].Link.ID != "x" {
		t.Fatalf("skipped = %+v", r.Efficiency.SkippedLinks)
	}
	if len(r.Efficiency.Links) != 3 {
		t.Fatalf("links = %d, want 3", len(r.Efficiency.Links))
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var skippedCount int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "floorsense.links.skipped" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				skippedCount += dp.Value
			}
		}
	}
	if skippedCount != 1 {
		t.Fatalf("skipped metric = %d, want 1", skippedCount)
	}
}

func TestZeroAreaZoneIsRejected(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	l := lobbyLayout()
	l.Zones[1].Size.Width = 0
	_, err := e.Assess(context.Background(), l, nil)
	var verrs layout.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if verrs[0].Field != "zones[1].size.width" {
		t.Fatalf("field = %s", verrs[0].Field)
	}
}

func TestEmptyLayout(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	r, err := e.Assess(context.Background(), layout.Layout{Name: "blank", Dimensions: layout.Dimensions{Width: 10, Height: 10}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Safety.OverallScore != 0 || r.Safety.SafetyLevel != rating.LevelCritical {
		t.Fatalf("safety = %v %s", r.Safety.OverallScore, r.Safety.SafetyLevel)
	}
	if r.Efficiency.OverallScore != 0 || len(r.Efficiency.Links) != 0 {
		t.Fatalf("efficiency = %+v", r.Efficiency)
	}
	if !strings.Contains(r.Safety.Summary, "no zones") {
		t.Fatalf("summary = %q", r.Safety.Summary)
	}
}

func TestSafetyReportAggregates(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	r, err := e.Safety(context.Background(), lobbyLayout())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.ZoneAssessments) != 3 {
		t.Fatalf("zones = %d", len(r.ZoneAssessments))
	}
	var sum float64
	for _, z := range r.ZoneAssessments {
		sum += z.OverallScore
	}
	if want := math.Round(sum / 3); r.OverallScore != want {
		t.Fatalf("overall = %v, want mean %v", r.OverallScore, want)
	}
	if r.SafetyLevel != rating.LevelFor(r.OverallScore) {
		t.Fatalf("level = %s for %v", r.SafetyLevel, r.OverallScore)
	}
	if lobby, _ := r.Zone("e"); lobby.OverallScore != 78 {
		t.Fatalf("lobby score = %v, want 78", lobby.OverallScore)
	}
	if !strings.Contains(r.Summary, "Strongest zone: Lobby (78)") || !strings.Contains(r.Summary, "Weakest zone: Store") {
		t.Fatalf("summary = %q", r.Summary)
	}
}

func TestTopRecommendationsWorstZonesFirst(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	r, err := e.Safety(context.Background(), lobbyLayout())
	if err != nil {
		t.Fatal(err)
	}
	top := r.TopRecommendations
	if len(top) != rating.MaxRecommendations {
		t.Fatalf("top = %d, want %d", len(top), rating.MaxRecommendations)
	}
	prev := -1.0
	seen := make(map[string]bool)
	for _, rec := range top {
		if rec.Priority != rating.PriorityHigh {
			t.Fatalf("non-high recommendation %+v", rec)
		}
		z, ok := r.Zone(rec.AffectedZones[0])
		if !ok {
			t.Fatalf("unknown zone %v", rec.AffectedZones)
		}
		if z.OverallScore < prev {
			t.Fatalf("recommendations not ordered by zone score: %+v", top)
		}
		prev = z.OverallScore
		if seen[topKey(rec)] {
			t.Fatalf("duplicate %s", topKey(rec))
		}
		seen[topKey(rec)] = true
	}
	if top[0].AffectedZones[0] != "w" || top[4].AffectedZones[0] != "e" {
		t.Fatalf("expected Desks first and Lobby last: %+v", top)
	}
	if !strings.HasPrefix(top[0].Message, "Desks: ") {
		t.Fatalf("message = %q", top[0].Message)
	}
}

func TestBatchKeepsOrderAndFailsFast(t *testing.T) {
	e, _ := newEngine(t, LinkPolicyReject)
	a := lobbyLayout()
	b := lobbyLayout()
	b.Name = "lobby-b"
	b.Zones = b.Zones[:2]

	reports, err := e.Batch(context.Background(), []Job{{Layout: a}, {Layout: b}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if reports[0].Layout != "lobby" || reports[1].Layout != "lobby-b" {
		t.Fatalf("order = %s, %s", reports[0].Layout, reports[1].Layout)
	}
	if len(reports[1].Efficiency.Links) != 1 {
		t.Fatalf("lobby-b links = %d, want 1", len(reports[1].Efficiency.Links))
	}

	bad := lobbyLayout()
	bad.Name = "bad"
	bad.Dimensions.Width = 0
	_, err = e.Batch(context.Background(), []Job{{Layout: a}, {Layout: bad}}, 0)
	if err == nil || !strings.Contains(err.Error(), "layout bad") {
		t.Fatalf("err = %v, want failure for layout bad", err)
	}
}

func TestOptionsFallBackToDefaults(t *testing.T) {
	e := New(Options{})
	o := e.Options()
	if o.LinkPolicy != LinkPolicyReject || o.Matrix.IsZero() || o.Weights.Base == nil || o.Now == nil {
		t.Fatalf("defaults not applied: %+v", o)
	}
}

func TestEmptyMatrixMakesEveryPairLow(t *testing.T) {
	empty, err := collab.NewMatrix()
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Matrix = empty
	e := New(opts)
	if !e.Options().Matrix.Empty() {
		t.Fatal("explicit empty matrix replaced by the default")
	}

	r, err := e.Assess(context.Background(), lobbyLayout(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, la := range r.Efficiency.Links {
		if la.Link.Intensity != layout.IntensityLow {
			t.Errorf("link %s intensity = %s, want low", la.Link.ID, la.Link.Intensity)
		}
	}
}
