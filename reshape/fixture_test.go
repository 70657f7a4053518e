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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowc/skewreshape/graph"
)

func TestGetOrCreateAggregationFixture_MemoisedPerDestination(t *testing.T) {
	rs, err := New(WithRNGSeed(0))
	require.NoError(t, err)
	s := newReshapeState(rs)

	dst := graph.NewOperatorVertex(nil)

	f1, err := s.getOrCreateAggregationFixture(dst)
	require.NoError(t, err)
	f2, err := s.getOrCreateAggregationFixture(dst)
	require.NoError(t, err)

	require.Same(t, f1, f2)
	require.Equal(t, 1, f1.mcID)
}

func TestGetOrCreateAggregationFixture_DistinctDestinationsGetDistinctFixtures(t *testing.T) {
	rs, err := New(WithRNGSeed(0))
	require.NoError(t, err)
	s := newReshapeState(rs)

	d1 := graph.NewOperatorVertex(nil)
	d2 := graph.NewOperatorVertex(nil)

	f1, err := s.getOrCreateAggregationFixture(d1)
	require.NoError(t, err)
	f2, err := s.getOrCreateAggregationFixture(d2)
	require.NoError(t, err)

	require.NotSame(t, f1, f2)
	require.Equal(t, 1, f1.mcID)
	require.Equal(t, 2, f2.mcID)
	require.NotEqual(t, f1.abv.ID(), f2.abv.ID())
}

func TestGetOrCreateAggregationFixture_ParallelismAndResourceSlot(t *testing.T) {
	rs, err := New(WithRNGSeed(0))
	require.NoError(t, err)
	s := newReshapeState(rs)

	dst := graph.NewOperatorVertex(nil)
	f, err := s.getOrCreateAggregationFixture(dst)
	require.NoError(t, err)

	p, ok := f.abv.Properties().Get(graph.PropertyParallelism)
	require.True(t, ok)
	require.Equal(t, 1, p)

	rs2, ok := f.dummy.Properties().Get(graph.PropertyResourceSlot)
	require.True(t, ok)
	require.Equal(t, false, rs2)
}
