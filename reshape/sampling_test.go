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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampledParallelism_RoundsAndFloorsAtOne(t *testing.T) {
	require.Equal(t, 2, sampledParallelism(4, 0.5))
	require.Equal(t, 1, sampledParallelism(4, 0.1))
	require.Equal(t, 4, sampledParallelism(4, 1.0))
	require.Equal(t, 1, sampledParallelism(1, 0.01))
}

func TestSampleIndices_DistinctSortedWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(123))
	indices := sampleIndices(rng, 10, 4)

	require.Len(t, indices, 4)
	seen := make(map[int]bool)
	for i, idx := range indices {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 10)
		require.False(t, seen[idx], "indices must be distinct")
		seen[idx] = true
		if i > 0 {
			require.Less(t, indices[i-1], idx, "indices must be returned in ascending order")
		}
	}
}

func TestSampleIndices_SameSeedSameResult(t *testing.T) {
	a := sampleIndices(rand.New(rand.NewSource(7)), 20, 5)
	b := sampleIndices(rand.New(rand.NewSource(7)), 20, 5)
	require.Equal(t, a, b)
}
