//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

// Package codec defines the abstract encoder/decoder/key-extractor
// contracts spec'd as external collaborators: the reshaping pass only
// ever calls through these interfaces, never inspects a concrete
// implementation. The one concrete implementation this package ships,
// IntPairCodec, exists so MetricCollect's "actual serialised byte count"
// statistic is computable in tests without depending on a full
// user-facing serialization framework.
package codec

import "io"

// KeyExtractor derives the partitioning key of an element. Its Hash
// method must be stable across runs so that sampled and unsampled reads
// of the same element land in the same hash bucket.
type KeyExtractor interface {
	ExtractKey(element any) (any, error)
	// Hash returns a stable, non-negative-safe hash of key (callers take
	// the absolute value before reducing modulo the hash range).
	Hash(key any) int64
}

// Encoder writes one element to an underlying sink.
type Encoder interface {
	Encode(element any) error
}

// EncoderFactory creates an Encoder bound to sink.
type EncoderFactory interface {
	Create(sink io.Writer) Encoder
}

// Decoder reads one element from an underlying source.
type Decoder interface {
	Decode() (any, error)
}

// DecoderFactory creates a Decoder bound to source. The method is named
// CreateDecoder rather than Create so a single concrete type can
// implement both EncoderFactory and DecoderFactory without a name clash.
type DecoderFactory interface {
	CreateDecoder(source io.Reader) Decoder
}
