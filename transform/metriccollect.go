//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package transform

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/flowc/skewreshape/graph"
	"github.com/flowc/skewreshape/internal/codec"
)

// HashRangeMultiplier is the fixed small integer constant spec.md §4.4
// names: the default factor by which destination parallelism is scaled
// to form the bucket space statistics are collected into.
const HashRangeMultiplier = 10

// MetricCollect buckets elements by hash(key) mod hashRange and, on
// Close, encodes each bucket's elements with the source edge's own
// encoder to measure the actual serialised byte count — the statistic
// the downstream skew decision consumes, not an element count.
type MetricCollect struct {
	keyExtractor   codec.KeyExtractor
	encoderFactory codec.EncoderFactory
	hashRange      int
	buckets        map[int][]any
}

var _ graph.Transform = (*MetricCollect)(nil)

// NewMetricCollectTransform constructs the buffering collector.
// dstParallelism*hashRangeMultiplier must be positive.
func NewMetricCollectTransform(keyExtractor codec.KeyExtractor, encoderFactory codec.EncoderFactory, dstParallelism, hashRangeMultiplier int) *MetricCollect {
	return &MetricCollect{
		keyExtractor:   keyExtractor,
		encoderFactory: encoderFactory,
		hashRange:      dstParallelism * hashRangeMultiplier,
		buckets:        make(map[int][]any),
	}
}

// Accumulate derives the element's key, hashes it into a bucket, and
// appends the element to that bucket's in-memory list. Nothing is
// emitted until Close.
func (m *MetricCollect) Accumulate(element any) ([]any, error) {
	key, err := m.keyExtractor.ExtractKey(element)
	if err != nil {
		return nil, fmt.Errorf("MetricCollect: extracting key: %w", err)
	}
	h := m.keyExtractor.Hash(key)
	if h < 0 {
		h = -h
	}
	pk := int(h % int64(m.hashRange))
	m.buckets[pk] = append(m.buckets[pk], element)
	return nil, nil
}

// Close encodes every bucket's elements and emits one codec.IntPair per
// bucket: (partition key, serialised byte size). Buckets are visited in
// key order so Close is deterministic given deterministic Accumulate
// calls.
func (m *MetricCollect) Close() ([]any, error) {
	keys := make([]int, 0, len(m.buckets))
	for k := range m.buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]any, 0, len(keys))
	for _, pk := range keys {
		var scratch bytes.Buffer
		encoder := m.encoderFactory.Create(&scratch)
		for _, element := range m.buckets[pk] {
			if err := encoder.Encode(element); err != nil {
				return nil, fmt.Errorf("MetricCollect: encoding bucket %d: %w", pk, err)
			}
		}
		out = append(out, codec.IntPair{Key: pk, Value: int64(scratch.Len())})
	}
	return out, nil
}

// NewMetricCollect produces the operator vertex the reshaping pass
// inserts per sampled shuffle edge (the "mcv" of spec.md §4.5). It reads
// the key extractor and encoder off edge and finalises the edge's
// Encoder property in the process, matching the original pass locking
// in the encoder it is about to rely on for size accounting.
func NewMetricCollect(edge *graph.Edge, dstParallelism int, hashRangeMultiplier int) (*graph.OperatorVertex, error) {
	keyExtractorAny, ok := edge.Properties().Get(graph.PropertyKeyExtractor)
	if !ok {
		return nil, fmt.Errorf("%w: edge %s has no KeyExtractor", graph.ErrMissingRequiredProperty, edge.ID())
	}
	keyExtractor, ok := keyExtractorAny.(codec.KeyExtractor)
	if !ok {
		return nil, fmt.Errorf("MetricCollect: edge %s KeyExtractor is not a codec.KeyExtractor (got %T)", edge.ID(), keyExtractorAny)
	}

	encoderAny, ok := edge.Properties().Get(graph.PropertyEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: edge %s has no Encoder", graph.ErrMissingRequiredProperty, edge.ID())
	}
	encoderFactory, ok := encoderAny.(codec.EncoderFactory)
	if !ok {
		return nil, fmt.Errorf("MetricCollect: edge %s Encoder is not a codec.EncoderFactory (got %T)", edge.ID(), encoderAny)
	}
	if err := edge.Properties().SetPermanently(graph.PropertyEncoder, encoderFactory); err != nil {
		return nil, fmt.Errorf("MetricCollect: finalising encoder on edge %s: %w", edge.ID(), err)
	}

	if hashRangeMultiplier <= 0 {
		hashRangeMultiplier = HashRangeMultiplier
	}
	t := NewMetricCollectTransform(keyExtractor, encoderFactory, dstParallelism, hashRangeMultiplier)
	return graph.NewOperatorVertex(t), nil
}
