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
	"github.com/flowc/skewreshape/graph"
	"github.com/flowc/skewreshape/transform"
)

// aggregationFixture is the per-destination triple spec.md §4.5.2
// describes: a single AggregateMetric vertex (abv), a single-parallelism
// control vertex (dummy) downstream of it, and the mcId tying every
// shuffle edge rewritten for this destination together.
type aggregationFixture struct {
	abv   *graph.OperatorVertex
	dummy *graph.OperatorVertex
	mcID  int
}

// getOrCreateAggregationFixture returns the fixture for destination v,
// creating it on first use. All shuffle edges terminating at the same v
// within one Apply call share one fixture, so the runtime sees a single
// statistic per downstream stage (spec.md §4.5.2's stated rationale).
func (s *reshapeState) getOrCreateAggregationFixture(v graph.Vertex) (*aggregationFixture, error) {
	if f, ok := s.fixtures[v.ID()]; ok {
		return f, nil
	}

	abv := transform.NewAggregateMetric()
	if err := abv.Properties().SetPermanently(graph.PropertyParallelism, 1); err != nil {
		return nil, err
	}
	s.builder.AddVertex(abv)

	s.mcCounter++
	mcID := s.mcCounter

	dummy := graph.NewOperatorVertex(nil)
	if err := dummy.Properties().SetPermanently(graph.PropertyParallelism, 1); err != nil {
		return nil, err
	}
	if err := abv.CopyExecutionPropertiesTo(dummy); err != nil {
		return nil, err
	}
	s.builder.AddVertex(dummy)

	if err := abv.Properties().SetPermanently(graph.PropertyResourceSlot, false); err != nil {
		return nil, err
	}
	if err := dummy.Properties().SetPermanently(graph.PropertyResourceSlot, false); err != nil {
		return nil, err
	}

	controlEdge := graph.NewEdge(graph.CommOneToOne, abv, dummy)
	s.builder.ConnectVertices(controlEdge)

	f := &aggregationFixture{abv: abv, dummy: dummy, mcID: mcID}
	s.fixtures[v.ID()] = f
	return f, nil
}
