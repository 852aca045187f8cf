package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"floorsense/internal/allen"
	"floorsense/internal/assess"
	"floorsense/internal/layout"
)

func twoZones(name string) layout.Layout {
	return layout.Layout{
		Name:       name,
		Dimensions: layout.Dimensions{Width: 10, Height: 10},
		Zones: []layout.Zone{
			{ID: "a", Name: "Desks", Type: layout.ZoneWorkspace, Position: layout.Position{X: 0, Y: 0}, Size: layout.Size{Width: 2, Height: 2}},
			{ID: "b", Name: "Huddle", Type: layout.ZoneMeeting, Position: layout.Position{X: 6, Y: 6}, Size: layout.Size{Width: 2, Height: 2}},
		},
	}
}

func engine() *assess.Engine {
	opts := assess.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return assess.New(opts)
}

// gatedAssessor blocks assessments of layouts named "slow" until released.
type gatedAssessor struct {
	engine  *assess.Engine
	started chan struct{}
	release chan struct{}
}

func (g *gatedAssessor) Assess(ctx context.Context, l layout.Layout, links []layout.CollaborationLink) (assess.Report, error) {
	if l.Name == "slow" {
		close(g.started)
		<-g.release
	}
	return g.engine.Assess(ctx, l, links)
}

func TestEditPublishesResult(t *testing.T) {
	var published []Result
	s := NewSession(engine(), Hooks{OnResult: func(r Result) { published = append(published, r) }}, nil)

	res, err := s.Edit(context.Background(), twoZones("v1"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Generation != 1 || res.Report.Layout != "v1" {
		t.Fatalf("result = gen %d layout %s", res.Generation, res.Report.Layout)
	}
	if len(published) != 1 {
		t.Fatalf("published = %d, want 1", len(published))
	}
	latest, ok := s.Latest()
	if !ok || latest.Generation != 1 {
		t.Fatalf("latest = %+v %v", latest.Generation, ok)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	g := &gatedAssessor{engine: engine(), started: make(chan struct{}), release: make(chan struct{})}
	s := NewSession(g, Hooks{}, nil)

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = s.Edit(context.Background(), twoZones("slow"), nil)
	}()
	<-g.started

	fast, err := s.Edit(context.Background(), twoZones("fast"), nil)
	if err != nil {
		t.Fatal(err)
	}
	close(g.release)
	wg.Wait()

	if !errors.Is(slowErr, ErrSuperseded) {
		t.Fatalf("slow edit err = %v, want ErrSuperseded", slowErr)
	}
	latest, _ := s.Latest()
	if latest.Generation != fast.Generation || latest.Report.Layout != "fast" {
		t.Fatalf("latest = gen %d %s, want the fast edit", latest.Generation, latest.Report.Layout)
	}
	if s.Generation() != 2 {
		t.Fatalf("generation = %d, want 2", s.Generation())
	}
}

func TestEditKeepsPreviousResultOnError(t *testing.T) {
	s := NewSession(engine(), Hooks{}, nil)
	if _, err := s.Edit(context.Background(), twoZones("good"), nil); err != nil {
		t.Fatal(err)
	}
	bad := twoZones("bad")
	bad.Zones[0].Size.Height = 0
	if _, err := s.Edit(context.Background(), bad, nil); err == nil {
		t.Fatal("expected validation error")
	}
	latest, ok := s.Latest()
	if !ok || latest.Report.Layout != "good" {
		t.Fatalf("latest = %+v", latest.Report.Layout)
	}
}

func TestHighlightHooks(t *testing.T) {
	var selected layout.Zone
	var hovered allen.LinkAssessment
	s := NewSession(engine(), Hooks{
		SelectZone: func(z layout.Zone) { selected = z },
		HoverLink:  func(la allen.LinkAssessment) { hovered = la },
	}, nil)

	if err := s.SelectZone("a"); !errors.Is(err, ErrNoAssessment) {
		t.Fatalf("err = %v, want ErrNoAssessment", err)
	}
	if _, err := s.Edit(context.Background(), twoZones("v1"), nil); err != nil {
		t.Fatal(err)
	}

	if err := s.SelectZone("b"); err != nil {
		t.Fatal(err)
	}
	if selected.Name != "Huddle" {
		t.Fatalf("selected = %+v", selected)
	}
	if err := s.SelectZone("zz"); !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("err = %v, want ErrUnknownZone", err)
	}

	if err := s.HoverLink("auto-a-b"); err != nil {
		t.Fatal(err)
	}
	if hovered.Link.ID != "auto-a-b" || hovered.Distance == 0 {
		t.Fatalf("hovered = %+v", hovered)
	}
	if err := s.HoverLink("nope"); !errors.Is(err, ErrUnknownLink) {
		t.Fatalf("err = %v, want ErrUnknownLink", err)
	}
}
