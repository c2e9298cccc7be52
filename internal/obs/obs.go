// Package obs exposes run counters and latency views over a
// prometheus scrape endpoint.
package obs

import (
	"context"
	"fmt"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	MRunsStarted   = stats.Int64("mvd/runs_started", "validation runs started", stats.UnitDimensionless)
	MRunsCompleted = stats.Int64("mvd/runs_completed", "validation runs completed", stats.UnitDimensionless)
	MRunsFailed    = stats.Int64("mvd/runs_failed", "validation runs failed", stats.UnitDimensionless)
	MRunLatencyMs  = stats.Float64("mvd/run_latency", "validation run latency", stats.UnitMilliseconds)
)

var KeyModelID = tag.MustNewKey("model_id")

var views = []*view.View{
	{
		Name:        "mvd/runs_started",
		Description: "number of validation runs started",
		Measure:     MRunsStarted,
		TagKeys:     []tag.Key{KeyModelID},
		Aggregation: view.Count(),
	},
	{
		Name:        "mvd/runs_completed",
		Description: "number of validation runs completed",
		Measure:     MRunsCompleted,
		TagKeys:     []tag.Key{KeyModelID},
		Aggregation: view.Count(),
	},
	{
		Name:        "mvd/runs_failed",
		Description: "number of validation runs failed",
		Measure:     MRunsFailed,
		TagKeys:     []tag.Key{KeyModelID},
		Aggregation: view.Count(),
	},
	{
		Name:        "mvd/run_latency",
		Description: "validation run latency distribution",
		Measure:     MRunLatencyMs,
		Aggregation: view.Distribution(10, 50, 100, 500, 1000, 5000, 10000, 60000),
	},
}

// Register registers the run views and returns an http.Handler serving
// the prometheus scrape endpoint.
func Register() (http.Handler, error) {
	if err := view.Register(views...); err != nil {
		return nil, fmt.Errorf("unable to register views: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "mvd"})
	if err != nil {
		return nil, fmt.Errorf("unable to create prometheus exporter: %w", err)
	}
	view.RegisterExporter(exporter)
	return exporter, nil
}

// RecordRunStarted increments the started counter for a model.
func RecordRunStarted(ctx context.Context, modelID string) {
	record(ctx, modelID, MRunsStarted.M(1))
}

// RecordRunCompleted increments the completed counter and records the
// run latency.
func RecordRunCompleted(ctx context.Context, modelID string, latencyMs float64) {
	record(ctx, modelID, MRunsCompleted.M(1), MRunLatencyMs.M(latencyMs))
}

// RecordRunFailed increments the failed counter for a model.
func RecordRunFailed(ctx context.Context, modelID string) {
	record(ctx, modelID, MRunsFailed.M(1))
}

func record(ctx context.Context, modelID string, ms ...stats.Measurement) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyModelID, modelID)}, ms...)
}
