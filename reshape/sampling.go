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
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/flowc/skewreshape/graph"
)

// sampledParallelism computes Ps = max(round(origP * rate), 1).
func sampledParallelism(originalParallelism int, rate float64) int {
	ps := int(math.Round(float64(originalParallelism) * rate))
	if ps < 1 {
		ps = 1
	}
	return ps
}

// sampleIndices draws `sampled` distinct task indices uniformly without
// replacement from [0, originalParallelism), using rng, and returns them
// in ascending order so downstream range assignment is deterministic for
// a fixed RNG seed.
func sampleIndices(rng *rand.Rand, originalParallelism, sampled int) []int {
	perm := rng.Perm(originalParallelism)
	chosen := append([]int(nil), perm[:sampled]...)
	sort.Ints(chosen)
	return chosen
}

// buildSamplingSubDAG implements spec.md §4.5.1: it produces a sampled
// clone of T (restricted to task indices in the reshaping pass's chosen
// sample, relative to originalParallelism) and mirrors T's incoming
// edges, recursing upstream through in-memory OneToOne producers. It
// returns the sampled clone of T and the "start" vertex a BroadCast
// control edge must target — T's own sampled clone unless recursion
// extended the sub-DAG further upstream.
func (s *reshapeState) buildSamplingSubDAG(dag *graph.DAG, t graph.Vertex, indices []int, originalParallelism, sampled int) (graph.Vertex, graph.Vertex, error) {
	sampledClone, err := cloneForSampling(t, indices, originalParallelism)
	if err != nil {
		return nil, nil, err
	}
	// Copy T's properties except Parallelism, which is overridden below
	// (T's own value is usually permanent and would conflict). Copied
	// entries are stored as non-permanent on the clone.
	for _, kind := range t.Properties().Kinds() {
		if kind == graph.PropertyParallelism {
			continue
		}
		value, _ := t.Properties().Get(kind)
		if err := sampledClone.Properties().Set(kind, value); err != nil {
			return nil, nil, err
		}
	}
	if err := sampledClone.Properties().SetPermanently(graph.PropertyParallelism, sampled); err != nil {
		return nil, nil, err
	}
	s.builder.AddVertex(sampledClone)

	var start graph.Vertex
	for _, ein := range dag.IncomingEdgesOf(t) {
		pattern, err := communicationPattern(ein)
		if err != nil {
			return nil, nil, err
		}
		switch pattern {
		case graph.CommShuffle:
			if err := s.mirrorShuffleIncoming(ein, sampledClone, indices, originalParallelism, sampled); err != nil {
				return nil, nil, err
			}
		case graph.CommBroadCast:
			if err := s.mirrorBroadcastIncoming(ein, sampledClone); err != nil {
				return nil, nil, err
			}
		case graph.CommOneToOne:
			nextStart, err := s.mirrorOneToOneIncoming(dag, ein, t, sampledClone, indices, originalParallelism, sampled)
			if err != nil {
				return nil, nil, err
			}
			if nextStart != nil {
				start = nextStart
			}
		default:
			return nil, nil, fmt.Errorf("%w: edge %s has pattern %q", graph.ErrUnsupportedCommunicationPattern, ein.ID(), pattern)
		}
	}

	if start == nil {
		start = sampledClone
	}
	return sampledClone, start, nil
}

// cloneForSampling dispatches T's clone operation on its variant.
func cloneForSampling(t graph.Vertex, indices []int, originalParallelism int) (graph.Vertex, error) {
	switch v := t.(type) {
	case *graph.SourceVertex:
		return v.SampledClone(indices, originalParallelism), nil
	case *graph.OperatorVertex:
		return v.Clone(), nil
	default:
		return nil, fmt.Errorf("reshape: vertex %s has unsupported kind %T for sampling", t.ID(), t)
	}
}

// mirrorShuffleIncoming implements §4.5.1 step 2's Shuffle case: mirror
// ein as a Shuffle edge into the sampled clone, sharing a
// DuplicateEdgeGroup with the original edge if it doesn't already carry
// one, and stamping a ShuffleDistribution describing the sampled read
// window.
func (s *reshapeState) mirrorShuffleIncoming(ein *graph.Edge, sampledClone graph.Vertex, indices []int, originalParallelism, sampled int) error {
	tagged := s.ensureDuplicateGroupTag(ein, "")
	mirror := graph.NewEdge(graph.CommShuffle, ein.Src(), sampledClone)
	if err := tagged.CopyExecutionPropertiesTo(mirror); err != nil {
		return err
	}

	ranges := make(map[int]graph.KeyRange, sampled)
	for i := 0; i < sampled; i++ {
		idx := indices[i]
		ranges[i] = graph.KeyRange{Start: idx, End: idx + 1}
	}
	if err := mirror.Properties().SetPermanently(graph.PropertyShuffleDistribution, graph.ShuffleDistributionValue{
		OriginalParallelism: originalParallelism,
		Ranges:              ranges,
	}); err != nil {
		return err
	}

	s.builder.ConnectVertices(mirror)
	return nil
}

// mirrorBroadcastIncoming implements §4.5.1 step 2's BroadCast case.
func (s *reshapeState) mirrorBroadcastIncoming(ein *graph.Edge, sampledClone graph.Vertex) error {
	tagged := s.ensureDuplicateGroupTag(ein, "")
	mirror := graph.NewEdge(graph.CommBroadCast, ein.Src(), sampledClone)
	if err := tagged.CopyExecutionPropertiesTo(mirror); err != nil {
		return err
	}
	s.builder.ConnectVertices(mirror)
	return nil
}

// mirrorOneToOneIncoming implements §4.5.1 step 2's OneToOne case. When
// ein is an in-memory producer and t has exactly one incoming edge, the
// sampled sub-DAG must extend upstream (the in-memory producer cannot be
// replayed from a shared store), so this recurses into ein.Src() and
// returns the new upstream "start" vertex. Otherwise it mirrors ein
// directly and stamps a OneToOneDistribution, returning nil (no change
// to "start").
func (s *reshapeState) mirrorOneToOneIncoming(dag *graph.DAG, ein *graph.Edge, t graph.Vertex, sampledClone graph.Vertex, indices []int, originalParallelism, sampled int) (graph.Vertex, error) {
	dataStoreVal, ok := ein.Properties().Get(graph.PropertyDataStore)
	if !ok {
		return nil, fmt.Errorf("%w: edge %s (OneToOne) has no DataStore", graph.ErrMissingRequiredProperty, ein.ID())
	}

	if dataStoreVal == graph.DataStoreMemory && len(dag.IncomingEdgesOf(t)) == 1 {
		lastSampled, start, err := s.buildSamplingSubDAG(dag, ein.Src(), indices, originalParallelism, sampled)
		if err != nil {
			return nil, err
		}
		mirror := graph.NewEdge(graph.CommOneToOne, lastSampled, sampledClone)
		if err := ein.CopyExecutionPropertiesTo(mirror); err != nil {
			return nil, err
		}
		s.builder.ConnectVertices(mirror)
		return start, nil
	}

	tagged := s.ensureDuplicateGroupTag(ein, "Sampling-")
	mirror := graph.NewEdge(graph.CommOneToOne, ein.Src(), sampledClone)
	if err := tagged.CopyExecutionPropertiesTo(mirror); err != nil {
		return nil, err
	}
	dist := make(map[int]int, sampled)
	for i := 0; i < sampled; i++ {
		dist[i] = indices[i]
	}
	if err := mirror.Properties().SetPermanently(graph.PropertyOneToOneDistribution, dist); err != nil {
		return nil, err
	}
	s.builder.ConnectVertices(mirror)
	return nil, nil
}

// ensureDuplicateGroupTag returns a property-tagged stand-in for ein
// carrying a DuplicateEdgeGroup (minted with the given prefix if ein did
// not already have one), without mutating ein itself. The stand-in is
// remembered in edgeOverride so that when ein is later copied through
// verbatim elsewhere in the traversal (it feeds some other, non-sampled
// vertex too), the tagged version is used instead.
func (s *reshapeState) ensureDuplicateGroupTag(ein *graph.Edge, prefix string) *graph.Edge {
	if existing := s.resolveEdge(ein); existing != ein {
		return existing
	}
	if _, ok := ein.Properties().Get(graph.PropertyDuplicateEdgeGroup); ok {
		return ein
	}

	tagged := graph.NewEdge(ein.Pattern(), ein.Src(), ein.Dst())
	_ = ein.CopyExecutionPropertiesTo(tagged)
	_ = tagged.Properties().SetPermanently(graph.PropertyDuplicateEdgeGroup, s.nextDuplicateGroupID(prefix))
	s.edgeOverride[ein.ID()] = tagged
	return tagged
}
