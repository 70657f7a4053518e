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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringCodec_RoundTrip(t *testing.T) {
	c := NewStringCodec()
	var buf bytes.Buffer
	require.NoError(t, c.Create(&buf).Encode("hello skew"))

	got, err := c.CreateDecoder(&buf).Decode()
	require.NoError(t, err)
	require.Equal(t, "hello skew", got)
}

func TestStringKeyExtractor_StableHash(t *testing.T) {
	ke := NewStringKeyExtractor()

	key, err := ke.ExtractKey("partition-key")
	require.NoError(t, err)
	require.Equal(t, "partition-key", key)

	h1 := ke.Hash(key)
	h2 := ke.Hash(key)
	require.Equal(t, h1, h2, "hash must be stable across calls")
}

func TestStringKeyExtractor_DifferentKeysLikelyDifferentHashes(t *testing.T) {
	ke := NewStringKeyExtractor()
	h1 := ke.Hash("alpha")
	h2 := ke.Hash("beta")
	require.NotEqual(t, h1, h2)
}
