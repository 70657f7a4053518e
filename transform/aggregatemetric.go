//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

// Package transform holds the two stateless factories the reshaping
// pass inserts into the rewritten DAG: MetricCollect (per-sampled-task
// size statistics) and AggregateMetric (single-parallelism reduction of
// those statistics). Both factories only build configuration; all
// mutable accumulator state lives inside the Transform values they
// attach to the returned vertex.
package transform

import (
	"fmt"

	"github.com/flowc/skewreshape/graph"
	"github.com/flowc/skewreshape/internal/codec"
)

// AggregatedMetric is the final element AggregateMetric.Close emits: the
// combined byte-size histogram, keyed by the hashed partition key
// MetricCollect produced it under.
type AggregatedMetric map[int]int64

// AggregateMetric maintains the running sum-by-key accumulator spec.md
// §4.4 describes: for each input (k, c), it replaces k's value with
// old+c, inserting c if k was absent.
type AggregateMetric struct {
	accumulator AggregatedMetric
}

var _ graph.Transform = (*AggregateMetric)(nil)

// NewAggregateMetricTransform returns a fresh, empty accumulator.
func NewAggregateMetricTransform() *AggregateMetric {
	return &AggregateMetric{accumulator: make(AggregatedMetric)}
}

// Accumulate folds one (key, count) pair into the running histogram. It
// never emits eagerly; the combined histogram is only visible at Close.
func (a *AggregateMetric) Accumulate(element any) ([]any, error) {
	pair, ok := element.(codec.IntPair)
	if !ok {
		return nil, fmt.Errorf("AggregateMetric: expected codec.IntPair, got %T", element)
	}
	a.accumulator[pair.Key] += pair.Value
	return nil, nil
}

// Close emits the final histogram as a single element.
func (a *AggregateMetric) Close() ([]any, error) {
	return []any{a.accumulator}, nil
}

// NewAggregateMetric produces the operator vertex the reshaping pass
// inserts once per candidate destination (the "abv" of spec.md §4.5.2).
// Its Parallelism and ResourceSlot properties are the caller's
// responsibility to stamp, since they are fixed by the fixture
// memoisation logic, not by this factory.
func NewAggregateMetric() *graph.OperatorVertex {
	return graph.NewOperatorVertex(NewAggregateMetricTransform())
}
