//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package codec

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// IntPair is the wire element MetricCollect emits on the mcv->abv edge:
// a partition key paired with the serialised byte size observed for it.
type IntPair struct {
	Key   int
	Value int64
}

// IntPairCodec is the default pair-codec over (integer, long) the
// reshaping pass stamps on the mcv->abv edge (spec §4.5 step 8). It uses
// protobuf varint framing purely for deterministic, dependency-grounded
// size accounting; the wire format has no relation to the protobuf
// message schema of any other component.
type IntPairCodec struct{}

// NewIntPairCodec returns the shared pair-codec instance; it is
// stateless so a single value can back every mcv->abv edge.
func NewIntPairCodec() *IntPairCodec { return &IntPairCodec{} }

// Create implements EncoderFactory.
func (c *IntPairCodec) Create(sink io.Writer) Encoder {
	return &intPairEncoder{sink: sink}
}

// CreateDecoder implements DecoderFactory.
func (c *IntPairCodec) CreateDecoder(source io.Reader) Decoder {
	return &intPairDecoder{source: source}
}

type intPairEncoder struct {
	sink io.Writer
}

func (e *intPairEncoder) Encode(element any) error {
	pair, ok := element.(IntPair)
	if !ok {
		return fmt.Errorf("IntPairCodec: expected IntPair, got %T", element)
	}
	buf := protowire.AppendVarint(nil, uint64(int64(pair.Key)))
	buf = protowire.AppendVarint(buf, uint64(pair.Value))
	_, err := e.sink.Write(buf)
	return err
}

type intPairDecoder struct {
	source io.Reader
}

func (d *intPairDecoder) Decode() (any, error) {
	buf, err := io.ReadAll(d.source)
	if err != nil {
		return nil, err
	}
	key, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return nil, fmt.Errorf("IntPairCodec: malformed key varint")
	}
	value, n2 := protowire.ConsumeVarint(buf[n:])
	if n2 < 0 {
		return nil, fmt.Errorf("IntPairCodec: malformed value varint")
	}
	return IntPair{Key: int(int64(key)), Value: int64(value)}, nil
}

// EncodedSize returns the number of bytes Encode would write for pair,
// without allocating a sink. It is exposed for tests that want the size
// without a buffer.
func EncodedSize(pair IntPair) int {
	buf := protowire.AppendVarint(nil, uint64(int64(pair.Key)))
	buf = protowire.AppendVarint(buf, uint64(pair.Value))
	return len(buf)
}
