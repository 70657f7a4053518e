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

	"go.uber.org/zap"

	"github.com/flowc/skewreshape/graph"
	"github.com/flowc/skewreshape/internal/codec"
	"github.com/flowc/skewreshape/internal/telemetry"
	"github.com/flowc/skewreshape/transform"
)

// intPairCodec backs every mcv->abv edge's Encoder/Decoder property. It
// is stateless, so one shared instance is safe to stamp on every edge.
var intPairCodec = codec.NewIntPairCodec()

// reshapeState holds everything that is mutable over the course of a
// single Apply call: the output builder, the monotone mcId and
// DuplicateEdgeGroup counters, the aggregation-fixture memoisation, and
// the table of edges that had to be re-tagged (never in-place mutated)
// with a DuplicateEdgeGroup during sampling sub-DAG construction.
//
// It is discarded at the end of Apply; nothing here survives across
// calls except what lives on the Reshaper itself (the RNG, the policy).
type reshapeState struct {
	r      *Reshaper
	builder *graph.Builder

	mcCounter        int
	duplicateCounter int

	fixtures map[string]*aggregationFixture

	// edgeOverride maps an original DAG edge id to a property-tagged
	// replacement (same id, src, dst, pattern; a DuplicateEdgeGroup
	// stamped onto a copy of its property bag) created while building a
	// sampling sub-DAG. The input DAG's edge is never mutated in place;
	// callers that would otherwise copy an input edge through verbatim
	// consult this table first via resolveEdge.
	edgeOverride map[string]*graph.Edge
}

func newReshapeState(r *Reshaper) *reshapeState {
	return &reshapeState{
		r:            r,
		builder:      graph.NewBuilder(),
		fixtures:     make(map[string]*aggregationFixture),
		edgeOverride: make(map[string]*graph.Edge),
	}
}

// resolveEdge returns the tagged replacement for e if sampling sub-DAG
// construction created one, otherwise e itself.
func (s *reshapeState) resolveEdge(e *graph.Edge) *graph.Edge {
	if o, ok := s.edgeOverride[e.ID()]; ok {
		return o
	}
	return e
}

// copyThrough adds v and all of its incoming edges to the output
// unchanged (modulo edgeOverride substitution), the treatment every
// non-candidate vertex and every non-Shuffle incoming edge of a
// candidate receives.
func (s *reshapeState) copyThrough(v graph.Vertex, incoming []*graph.Edge) {
	s.builder.AddVertex(v)
	for _, e := range incoming {
		s.builder.ConnectVertices(s.resolveEdge(e))
	}
}

// visit implements one step of the topological traversal: candidate
// detection (spec.md §4.5 "Candidate selection") followed by either a
// pass-through copy or the per-candidate rewrite.
func (s *reshapeState) visit(dag *graph.DAG, v graph.Vertex) error {
	incoming := dag.IncomingEdgesOf(v)

	if !isCandidate(v, incoming) {
		s.copyThrough(v, incoming)
		return nil
	}

	telemetry.RecordCandidate(context.Background())
	s.r.logger.Debug("candidate vertex", zap.String("vertex", v.ID()))
	s.builder.AddVertex(v)

	for _, e := range incoming {
		pattern, err := communicationPattern(e)
		if err != nil {
			return err
		}
		if pattern != graph.CommShuffle {
			s.builder.ConnectVertices(s.resolveEdge(e))
			continue
		}
		if err := s.rewriteShuffleEdge(dag, v, e); err != nil {
			return err
		}
	}
	return nil
}

// isCandidate implements spec.md §4.5's three-clause test: v is an
// OperatorVertex, has at least one Shuffle incoming edge, and none of
// its incoming edges carries an AdditionalOutputTag (i.e. the shuffle
// feeds the main input, not a side channel).
func isCandidate(v graph.Vertex, incoming []*graph.Edge) bool {
	if v.Kind() != graph.VertexOperator {
		return false
	}
	hasShuffle := false
	for _, e := range incoming {
		if _, tagged := e.Properties().Get(graph.PropertyAdditionalOutputTag); tagged {
			return false
		}
		if e.Pattern() == graph.CommShuffle {
			hasShuffle = true
		}
	}
	return hasShuffle
}

// rewriteShuffleEdge implements spec.md §4.5's per-candidate rewrite for
// one Shuffle incoming edge e of candidate v.
func (s *reshapeState) rewriteShuffleEdge(dag *graph.DAG, v graph.Vertex, e *graph.Edge) error {
	src := e.Src()
	origParallelism, err := parallelism(src)
	if err != nil {
		return err
	}
	dstParallelism, err := parallelism(v)
	if err != nil {
		return err
	}

	sampled := sampledParallelism(origParallelism, s.r.policy.SampleRate)
	indices := sampleIndices(s.r.rng, origParallelism, sampled)

	lastSampled, startVtx, err := s.buildSamplingSubDAG(dag, src, indices, origParallelism, sampled)
	if err != nil {
		return err
	}

	fixture, err := s.getOrCreateAggregationFixture(v)
	if err != nil {
		return err
	}

	controlEdge := graph.NewEdge(graph.CommBroadCast, fixture.dummy, startVtx)
	s.builder.ConnectVertices(controlEdge)

	// The rewritten copy of e is built first so that NewMetricCollect
	// finalises the Encoder on the output edge, not on the input DAG's e.
	rewrittenEdge := graph.NewEdge(e.Pattern(), src, v)
	if err := e.CopyExecutionPropertiesTo(rewrittenEdge); err != nil {
		return err
	}
	mcv, err := transform.NewMetricCollect(rewrittenEdge, dstParallelism, s.r.policy.HashRangeMultiplier)
	if err != nil {
		return fmt.Errorf("edge %s: %w", e.ID(), err)
	}
	if err := mcv.Properties().SetPermanently(graph.PropertyParallelism, sampled); err != nil {
		return err
	}
	s.builder.AddVertex(mcv)

	edgeToMCV := graph.NewEdge(graph.CommOneToOne, lastSampled, mcv)
	if encoder, ok := e.Properties().Get(graph.PropertyEncoder); ok {
		if err := edgeToMCV.Properties().Set(graph.PropertyEncoder, encoder); err != nil {
			return err
		}
	}
	if decoder, ok := e.Properties().Get(graph.PropertyDecoder); ok {
		if err := edgeToMCV.Properties().Set(graph.PropertyDecoder, decoder); err != nil {
			return err
		}
	}
	s.builder.ConnectVertices(edgeToMCV)

	edgeToABV, err := s.buildEdgeToAggregator(e, mcv, fixture)
	if err != nil {
		return err
	}
	s.builder.ConnectVertices(edgeToABV)

	if err := rewrittenEdge.Properties().SetPermanently(graph.PropertyMetricCollection, fixture.mcID); err != nil {
		return err
	}
	s.builder.ConnectVertices(rewrittenEdge)

	telemetry.RecordEdgeRewritten(context.Background(), sampled)
	s.r.logger.Debug("rewrote shuffle edge",
		zap.String("edge", e.ID()),
		zap.String("destination", v.ID()),
		zap.Int("mcId", fixture.mcID),
		zap.Int("sampledParallelism", sampled),
	)
	return nil
}

// buildEdgeToAggregator constructs the mcv->abv edge (spec.md §4.5 step
// 8): a permanently Push/SerializedMemory/Discard Shuffle edge carrying
// the original edge's key extractor, the "DynOptData" side-output tag,
// and the default integer/long pair codec.
func (s *reshapeState) buildEdgeToAggregator(e *graph.Edge, mcv graph.Vertex, fixture *aggregationFixture) (*graph.Edge, error) {
	edge := graph.NewEdge(graph.CommShuffle, mcv, fixture.abv)
	props := edge.Properties()
	if err := props.SetPermanently(graph.PropertyDataStore, graph.DataStoreSerializedMemory); err != nil {
		return nil, err
	}
	if err := props.SetPermanently(graph.PropertyDataPersistence, graph.PersistenceDiscard); err != nil {
		return nil, err
	}
	if err := props.SetPermanently(graph.PropertyDataFlow, graph.FlowPush); err != nil {
		return nil, err
	}
	if keyExtractor, ok := e.Properties().Get(graph.PropertyKeyExtractor); ok {
		if err := props.Set(graph.PropertyKeyExtractor, keyExtractor); err != nil {
			return nil, err
		}
	}
	if err := props.Set(graph.PropertyAdditionalOutputTag, "DynOptData"); err != nil {
		return nil, err
	}

	// The source force-overrides this edge's codec to the integer pair
	// codec even when the original edge carries dedicated key codecs
	// (spec.md §9 Open Questions); this port follows that active
	// behaviour rather than the original's commented-out alternative.
	pairCodec := intPairCodec
	if err := props.Set(graph.PropertyEncoder, pairCodec); err != nil {
		return nil, err
	}
	if err := props.Set(graph.PropertyDecoder, pairCodec); err != nil {
		return nil, err
	}

	if err := props.SetPermanently(graph.PropertyMetricCollection, fixture.mcID); err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *reshapeState) nextDuplicateGroupID(prefix string) string {
	s.duplicateCounter++
	return fmt.Sprintf("%s%d", prefix, s.duplicateCounter)
}
