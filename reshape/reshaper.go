//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package reshape

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/flowc/skewreshape/graph"
	"github.com/flowc/skewreshape/internal/telemetry"
)

// Reshaper applies the sampling skew-reshaping rewrite to a DAG. It is
// pure and synchronous (spec.md §5): Apply spawns no goroutines and
// leaves the input DAG untouched. A Reshaper value owns an RNG and is
// therefore NOT safe for concurrent Apply calls; construct one Reshaper
// per goroutine if you need concurrency.
type Reshaper struct {
	policy Policy
	rng    *rand.Rand
	logger *zap.Logger
}

// New constructs a Reshaper from DefaultPolicy plus opts. It returns an
// error if the resulting policy is invalid (sample rate out of (0,1],
// non-positive hash range multiplier).
func New(opts ...Option) (*Reshaper, error) {
	policy := DefaultPolicy
	for _, opt := range opts {
		opt(&policy)
	}
	if err := policy.validate(); err != nil {
		return nil, err
	}

	var seed int64
	if policy.RNGSeed != nil {
		seed = *policy.RNGSeed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Reshaper{
		policy: policy,
		rng:    rand.New(rand.NewSource(seed)),
		logger: zap.NewNop(),
	}, nil
}

// WithLogger swaps in a caller-provided logger, e.g. zap.NewNop() in
// tests that don't want log noise, or a *zap.Logger wired to the
// application's own sink.
func (r *Reshaper) WithLogger(logger *zap.Logger) *Reshaper {
	r.logger = logger
	return r
}

// Apply rewrites dag and returns the new DAG. dag is never mutated; on
// any error the partially built output is discarded and a nil DAG is
// returned alongside the error, naming the offending vertex/edge id and
// property kind where applicable.
func (r *Reshaper) Apply(dag *graph.DAG) (*graph.DAG, error) {
	start := time.Now()
	ctx := context.Background()

	state := newReshapeState(r)
	err := dag.TopologicalDo(func(v graph.Vertex) error {
		return state.visit(dag, v)
	})
	if err != nil {
		return nil, err
	}

	out, err := state.builder.Build()
	if err != nil {
		return nil, err
	}

	telemetry.RecordApplyDuration(ctx, float64(time.Since(start).Microseconds())/1000.0)
	return out, nil
}

// parallelism reads v's Parallelism property, failing with
// ErrMissingRequiredProperty if absent.
func parallelism(v graph.Vertex) (int, error) {
	value, ok := v.Properties().Get(graph.PropertyParallelism)
	if !ok {
		return 0, fmt.Errorf("%w: vertex %s has no Parallelism", graph.ErrMissingRequiredProperty, v.ID())
	}
	n, ok := value.(int)
	if !ok {
		return 0, fmt.Errorf("%w: vertex %s Parallelism is not an int (got %T)", graph.ErrInvalidPropertyValue, v.ID(), value)
	}
	return n, nil
}

// communicationPattern reads e's CommunicationPattern property, failing
// with ErrMissingRequiredProperty if absent.
func communicationPattern(e *graph.Edge) (graph.CommPattern, error) {
	value, ok := e.Properties().Get(graph.PropertyCommunicationPattern)
	if ok {
		if p, ok := value.(graph.CommPattern); ok {
			return p, nil
		}
	}
	// The edge's own Pattern() accessor is the authoritative source; the
	// property bag mirrors it for passes that only look at properties.
	if e.Pattern() != "" {
		return e.Pattern(), nil
	}
	return "", fmt.Errorf("%w: edge %s has no CommunicationPattern", graph.ErrMissingRequiredProperty, e.ID())
}
