// Package observe provides the OpenTelemetry metrics, tracing and HTTP
// middleware shared by the CLI, the watcher and the HTTP server.
//
// Tests should build their own [Metrics] with [NewMetrics] and a manual
// reader rather than using [DefaultMetrics].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all floorsense metrics.
const meterName = "floorsense"

// Metrics holds all metric instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Assessments counts layout assessments. Attributes: source, status.
	Assessments metric.Int64Counter

	// AssessmentDuration tracks the wall time of one layout assessment.
	AssessmentDuration metric.Float64Histogram

	// ZoneScores records every per-zone safety score. Attribute: zone_type.
	ZoneScores metric.Float64Histogram

	// LinkEfficiency records every scored link. Attribute: status.
	LinkEfficiency metric.Float64Histogram

	// SkippedLinks counts supplied links dropped under the skip policy.
	// Attribute: reason.
	SkippedLinks metric.Int64Counter

	// Recommendations counts emitted recommendations. Attributes: report, priority.
	Recommendations metric.Int64Counter

	// StaleResults counts editor results discarded because a newer edit arrived.
	StaleResults metric.Int64Counter

	HTTPRequestDuration metric.Float64Histogram
}

var durationBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 55, 60, 70, 80, 85, 90, 100}

// NewMetrics creates every instrument on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Assessments, err = m.Int64Counter("floorsense.assessments",
		metric.WithDescription("Total layout assessments by source and status."),
	); err != nil {
		return nil, err
	}
	if met.AssessmentDuration, err = m.Float64Histogram("floorsense.assessment.duration",
		metric.WithDescription("Latency of one layout assessment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ZoneScores, err = m.Float64Histogram("floorsense.zone.score",
		metric.WithDescription("Per-zone psychological safety scores."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LinkEfficiency, err = m.Float64Histogram("floorsense.link.efficiency",
		metric.WithDescription("Per-link communication efficiency."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SkippedLinks, err = m.Int64Counter("floorsense.links.skipped",
		metric.WithDescription("Supplied links dropped because they reference unknown zones."),
	); err != nil {
		return nil, err
	}
	if met.Recommendations, err = m.Int64Counter("floorsense.recommendations",
		metric.WithDescription("Recommendations emitted by report and priority."),
	); err != nil {
		return nil, err
	}
	if met.StaleResults, err = m.Int64Counter("floorsense.editor.stale_results",
		metric.WithDescription("Assessment results discarded because a newer edit superseded them."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("floorsense.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordAssessment counts one assessment and records its duration.
func (m *Metrics) RecordAssessment(ctx context.Context, source, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	m.Assessments.Add(ctx, 1, attrs)
	m.AssessmentDuration.Record(ctx, d.Seconds(), attrs)
}

func (m *Metrics) RecordZoneScore(ctx context.Context, zoneType string, score float64) {
	if m == nil {
		return
	}
	m.ZoneScores.Record(ctx, score, metric.WithAttributes(attribute.String("zone_type", zoneType)))
}

func (m *Metrics) RecordLink(ctx context.Context, status string, efficiency float64) {
	if m == nil {
		return
	}
	m.LinkEfficiency.Record(ctx, efficiency, metric.WithAttributes(attribute.String("status", status)))
}

// RecordSkippedLink counts a dropped link with the reason it was dropped.
func (m *Metrics) RecordSkippedLink(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.SkippedLinks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordRecommendation(ctx context.Context, report, priority string) {
	if m == nil {
		return
	}
	m.Recommendations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("report", report),
			attribute.String("priority", priority),
		),
	)
}

func (m *Metrics) RecordStaleResult(ctx context.Context) {
	if m == nil {
		return
	}
	m.StaleResults.Add(ctx, 1)
}
