package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"floorsense/internal/allen"
	"floorsense/internal/collab"
	"floorsense/internal/layout"
	"floorsense/internal/observe"
	"floorsense/internal/psysafety"
)

// Engine assesses layouts. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	opts   Options
	model  allen.Model
	scorer psysafety.Scorer
}

// New returns an engine configured by opts.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:   opts,
		model:  allen.Model{Weights: opts.IntensityWeights, Now: opts.Now},
		scorer: psysafety.Scorer{Weights: opts.Weights, Now: opts.Now},
	}
}

// Options returns the resolved options.
func (e *Engine) Options() Options { return e.opts }

// Report is the full assessment of one layout.
type Report struct {
	Layout     string           `json:"layout"`
	Efficiency EfficiencyReport `json:"efficiency"`
	Safety     SafetyReport     `json:"safety"`
	AssessedAt time.Time        `json:"assessed_at"`
}

// Assess validates l and produces both the efficiency and the safety report.
func (e *Engine) Assess(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) (Report, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "assess.layout",
		trace.WithAttributes(
			attribute.String("layout", l.Name),
			attribute.Int("zones", len(l.Zones)),
			attribute.Int("supplied_links", len(supplied)),
		),
	)
	defer span.End()

	report, err := e.assess(ctx, l, supplied)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.opts.Metrics.RecordAssessment(ctx, e.opts.Source, "error", time.Since(start))
		return Report{}, err
	}
	span.SetAttributes(
		attribute.Float64("efficiency_score", report.Efficiency.OverallScore),
		attribute.Float64("safety_score", report.Safety.OverallScore),
	)
	e.opts.Metrics.RecordAssessment(ctx, e.opts.Source, "ok", time.Since(start))
	return report, nil
}

func (e *Engine) assess(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) (Report, error) {
	if err := layout.Validate(l, l.Name); err != nil {
		return Report{}, err
	}
	eff, err := e.efficiency(ctx, l, supplied)
	if err != nil {
		return Report{}, err
	}
	safety := e.safety(ctx, l)
	return Report{
		Layout:     l.Name,
		Efficiency: eff,
		Safety:     safety,
		AssessedAt: e.now(),
	}, nil
}

// Efficiency validates l and produces only the communication efficiency report.
func (e *Engine) Efficiency(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) (EfficiencyReport, error) {
	if err := layout.Validate(l, l.Name); err != nil {
		return EfficiencyReport{}, err
	}
	return e.efficiency(ctx, l, supplied)
}

// Safety validates l and produces only the psychological safety report.
func (e *Engine) Safety(ctx context.Context, l layout.Layout) (SafetyReport, error) {
	if err := layout.Validate(l, l.Name); err != nil {
		return SafetyReport{}, err
	}
	return e.safety(ctx, l), nil
}

// Links returns the complete link set for l: every supplied link that passes
// the link policy, plus one inferred link for each remaining zone pair.
func (e *Engine) Links(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) ([]layout.CollaborationLink, []SkippedLink, error) {
	if err := layout.Validate(l, l.Name); err != nil {
		return nil, nil, err
	}
	return e.links(ctx, l, supplied)
}

func (e *Engine) links(ctx context.Context, l layout.Layout, supplied []layout.CollaborationLink) ([]layout.CollaborationLink, []SkippedLink, error) {
	idx := l.ZoneIndex()
	kept := make([]layout.CollaborationLink, 0, len(supplied))
	var skipped []SkippedLink
	for _, link := range supplied {
		err := checkLink(link, idx)
		if err == nil {
			kept = append(kept, link)
			continue
		}
		if e.opts.LinkPolicy != LinkPolicySkip {
			return nil, nil, err
		}
		e.logger(ctx).Warn("skipping link", "layout", l.Name, "link_id", link.ID, "err", err)
		e.opts.Metrics.RecordSkippedLink(ctx, skipReason(err))
		skipped = append(skipped, SkippedLink{Link: link, Reason: err.Error()})
	}
	return collab.Generate(l.Zones, kept, e.opts.Matrix), skipped, nil
}

func checkLink(link layout.CollaborationLink, idx map[string]layout.Zone) error {
	for _, id := range []string{link.SourceZoneID, link.TargetZoneID} {
		if _, ok := idx[id]; !ok {
			return &LinkError{LinkID: link.ID, ZoneID: id, Err: ErrZoneNotFound}
		}
	}
	if link.SourceZoneID == link.TargetZoneID {
		return &LinkError{LinkID: link.ID, ZoneID: link.SourceZoneID, Err: ErrSelfLink}
	}
	if !link.Intensity.Valid() {
		return &LinkError{LinkID: link.ID, Err: fmt.Errorf("%w %q", ErrUnknownIntensity, link.Intensity)}
	}
	if w := link.Weight(); w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return &LinkError{LinkID: link.ID, Err: ErrInvalidWeight}
	}
	return nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrZoneNotFound):
		return "zone_not_found"
	case errors.Is(err, ErrSelfLink):
		return "self_link"
	case errors.Is(err, ErrUnknownIntensity):
		return "unknown_intensity"
	default:
		return "invalid_weight"
	}
}

func (e *Engine) logger(ctx context.Context) *slog.Logger {
	if e.opts.Logger != nil {
		return e.opts.Logger
	}
	return observe.Logger(ctx)
}

func (e *Engine) now() time.Time {
	return e.opts.Now().UTC()
}
