// Package editor is the boundary between an interactive floor plan editor
// and the assessment engine. Every edit bumps a generation counter and only
// the result of the newest edit is published.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"floorsense/internal/allen"
	"floorsense/internal/assess"
	"floorsense/internal/layout"
	"floorsense/internal/observe"
)

var (
	// ErrSuperseded is returned by Edit when a newer edit started while the
	// assessment was running.
	ErrSuperseded = errors.New("assessment superseded by a newer edit")
	// ErrNoAssessment is returned by the highlight hooks before the first
	// successful edit.
	ErrNoAssessment = errors.New("no assessment yet")
	ErrUnknownZone  = errors.New("unknown zone")
	ErrUnknownLink  = errors.New("unknown link")
)

// Assessor is the engine seen from the editor.
type Assessor interface {
	Assess(ctx context.Context, l layout.Layout, links []layout.CollaborationLink) (assess.Report, error)
}

// Hooks are the callbacks the canvas uses to highlight elements. Any of
// them may be nil.
type Hooks struct {
	SelectZone func(zone layout.Zone)
	HoverLink  func(link allen.LinkAssessment)
	// OnResult runs for every published result, outside the session lock.
	OnResult func(Result)
}

// Result is a published assessment of one layout generation.
type Result struct {
	Generation uint64
	Layout     layout.Layout
	Report     assess.Report
}

// Session tracks the latest layout snapshot of one editor and its assessment.
// It is safe for concurrent use.
type Session struct {
	assessor Assessor
	hooks    Hooks
	metrics  *observe.Metrics

	mu         sync.Mutex
	generation uint64
	latest     *Result
}

// NewSession returns a session that assesses edits with a. metrics may be nil.
func NewSession(a Assessor, hooks Hooks, metrics *observe.Metrics) *Session {
	return &Session{assessor: a, hooks: hooks, metrics: metrics}
}

// Edit records a new layout snapshot and assesses it. The result is
// published only if no other Edit started in the meantime; otherwise it is
// discarded and ErrSuperseded is returned.
func (s *Session) Edit(ctx context.Context, l layout.Layout, links []layout.CollaborationLink) (Result, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	report, err := s.assessor.Assess(ctx, l, links)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.metrics.RecordStaleResult(ctx)
		observe.Logger(ctx).Debug("discarding stale assessment", "layout", l.Name, "generation", gen)
		return Result{}, ErrSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("assess generation %d: %w", gen, err)
	}
	res := Result{Generation: gen, Layout: l, Report: report}
	s.latest = &res
	s.mu.Unlock()

	if s.hooks.OnResult != nil {
		s.hooks.OnResult(res)
	}
	return res, nil
}

// Generation returns the number of edits seen so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Latest returns the most recently published result.
func (s *Session) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// SelectZone asks the canvas to highlight the zone with the given id.
func (s *Session) SelectZone(id string) error {
	res, ok := s.Latest()
	if !ok {
		return ErrNoAssessment
	}
	zone, ok := res.Layout.ZoneByID(id)
	if !ok {
		return fmt.Errorf("select %q: %w", id, ErrUnknownZone)
	}
	if s.hooks.SelectZone != nil {
		s.hooks.SelectZone(zone)
	}
	return nil
}

// HoverLink asks the canvas to highlight the link with the given id.
func (s *Session) HoverLink(id string) error {
	res, ok := s.Latest()
	if !ok {
		return ErrNoAssessment
	}
	for _, la := range res.Report.Efficiency.Links {
		if la.Link.ID == id {
			if s.hooks.HoverLink != nil {
				s.hooks.HoverLink(la)
			}
			return nil
		}
	}
	return fmt.Errorf("hover %q: %w", id, ErrUnknownLink)
}
