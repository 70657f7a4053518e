//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

// Package telemetry instruments the reshaping pass itself, not the
// runtime it produces a DAG for. It is pure ambient observability: a
// caller that never calls Init gets nil instruments and every recording
// call below becomes a no-op, the same nil-safety contract the teacher's
// internal/telemetry chat metrics tracker gives callers who never wire a
// MeterProvider.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Exported so a caller (or a test) can reset them between Init calls.
var (
	ReshapeCandidatesFound     metric.Int64Counter
	ReshapeEdgesRewritten      metric.Int64Counter
	ReshapeSampledParallelism  metric.Int64Histogram
	ReshapeApplyDurationMillis metric.Float64Histogram
)

// Init wires every reshaping-pass metric to meter. Call it once at
// program start with the application's MeterProvider; skipping it
// leaves every instrument nil and every Record* call a no-op.
func Init(meter metric.Meter) error {
	var err error
	ReshapeCandidatesFound, err = meter.Int64Counter(
		"skewreshape.candidates_found",
		metric.WithDescription("operator vertices with at least one main-input Shuffle incoming edge"),
	)
	if err != nil {
		return err
	}
	ReshapeEdgesRewritten, err = meter.Int64Counter(
		"skewreshape.edges_rewritten",
		metric.WithDescription("shuffle edges replaced with a sampled-statistics rewrite"),
	)
	if err != nil {
		return err
	}
	ReshapeSampledParallelism, err = meter.Int64Histogram(
		"skewreshape.sampled_parallelism",
		metric.WithDescription("Ps chosen per rewritten shuffle edge"),
	)
	if err != nil {
		return err
	}
	ReshapeApplyDurationMillis, err = meter.Float64Histogram(
		"skewreshape.apply_duration_ms",
		metric.WithDescription("wall-clock duration of one Reshaper.Apply call"),
		metric.WithUnit("ms"),
	)
	return err
}

// RecordCandidate increments the candidates-found counter by one.
func RecordCandidate(ctx context.Context) {
	if ReshapeCandidatesFound == nil {
		return
	}
	ReshapeCandidatesFound.Add(ctx, 1)
}

// RecordEdgeRewritten increments the edges-rewritten counter and records
// sampledParallelism on the parallelism histogram.
func RecordEdgeRewritten(ctx context.Context, sampledParallelism int) {
	if ReshapeEdgesRewritten != nil {
		ReshapeEdgesRewritten.Add(ctx, 1)
	}
	if ReshapeSampledParallelism != nil {
		ReshapeSampledParallelism.Record(ctx, int64(sampledParallelism))
	}
}

// RecordApplyDuration records how long one Apply call took, in
// milliseconds.
func RecordApplyDuration(ctx context.Context, millis float64) {
	if ReshapeApplyDurationMillis == nil {
		return
	}
	ReshapeApplyDurationMillis.Record(ctx, millis)
}
