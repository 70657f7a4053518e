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
)

// StringCodec is a minimal EncoderFactory/DecoderFactory for string
// elements, used by tests and examples standing in for whatever
// user-defined codec a real shuffle edge would carry.
type StringCodec struct{}

func NewStringCodec() *StringCodec { return &StringCodec{} }

func (c *StringCodec) Create(sink io.Writer) Encoder {
	return &stringEncoder{sink: sink}
}

func (c *StringCodec) CreateDecoder(source io.Reader) Decoder {
	return &stringDecoder{source: source}
}

type stringEncoder struct{ sink io.Writer }

func (e *stringEncoder) Encode(element any) error {
	s, ok := element.(string)
	if !ok {
		return fmt.Errorf("StringCodec: expected string, got %T", element)
	}
	_, err := io.WriteString(e.sink, s)
	return err
}

type stringDecoder struct{ source io.Reader }

func (d *stringDecoder) Decode() (any, error) {
	b, err := io.ReadAll(d.source)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// StringKeyExtractor extracts the element itself as its own key, using
// an inlined 32-bit FNV-1a hash for a stable cross-run hash.
type StringKeyExtractor struct{}

func NewStringKeyExtractor() *StringKeyExtractor { return &StringKeyExtractor{} }

func (StringKeyExtractor) ExtractKey(element any) (any, error) {
	s, ok := element.(string)
	if !ok {
		return nil, fmt.Errorf("StringKeyExtractor: expected string, got %T", element)
	}
	return s, nil
}

func (StringKeyExtractor) Hash(key any) int64 {
	s, _ := key.(string)
	return int64(fnv32(s))
}

func fnv32(s string) uint32 {
	const prime32 = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}
