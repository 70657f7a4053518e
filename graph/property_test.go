//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertyBag_SetAndGet(t *testing.T) {
	b := NewPropertyBag()
	require.NoError(t, b.Set(PropertyParallelism, 4))

	v, ok := b.Get(PropertyParallelism)
	require.True(t, ok)
	require.Equal(t, 4, v)

	_, ok = b.Get(PropertyDataStore)
	require.False(t, ok)
}

func TestPropertyBag_SetRejectsOutOfDomain(t *testing.T) {
	b := NewPropertyBag()
	err := b.Set(PropertyParallelism, 0)
	require.ErrorIs(t, err, ErrInvalidPropertyValue)

	err = b.Set(PropertyCommunicationPattern, CommPattern("Gather"))
	require.ErrorIs(t, err, ErrInvalidPropertyValue)

	err = b.Set(PropertyCommunicationPattern, "not-a-commpattern")
	require.ErrorIs(t, err, ErrInvalidPropertyValue)
}

func TestPropertyBag_SetPermanentlyThenSetSameValueSucceeds(t *testing.T) {
	b := NewPropertyBag()
	require.NoError(t, b.SetPermanently(PropertyParallelism, 8))
	require.NoError(t, b.SetPermanently(PropertyParallelism, 8))
	require.NoError(t, b.Set(PropertyParallelism, 8))
}

func TestPropertyBag_SetPermanentlyThenDifferentValueConflicts(t *testing.T) {
	b := NewPropertyBag()
	require.NoError(t, b.SetPermanently(PropertyParallelism, 8))

	err := b.Set(PropertyParallelism, 16)
	require.True(t, errors.Is(err, ErrPermanentConflict))

	err = b.SetPermanently(PropertyParallelism, 16)
	require.True(t, errors.Is(err, ErrPermanentConflict))
}

func TestPropertyBag_NonPermanentCanBePromotedToPermanent(t *testing.T) {
	b := NewPropertyBag()
	require.NoError(t, b.Set(PropertyParallelism, 2))
	require.NoError(t, b.SetPermanently(PropertyParallelism, 2))

	err := b.Set(PropertyParallelism, 3)
	require.ErrorIs(t, err, ErrPermanentConflict)
}

func TestPropertyBag_CopyToPreservesPermanence(t *testing.T) {
	src := NewPropertyBag()
	require.NoError(t, src.SetPermanently(PropertyParallelism, 5))
	require.NoError(t, src.Set(PropertyDataStore, DataStoreMemory))

	dst := NewPropertyBag()
	require.NoError(t, src.CopyTo(dst))

	v, ok := dst.Get(PropertyParallelism)
	require.True(t, ok)
	require.Equal(t, 5, v)

	// permanence carried over: a conflicting Set on dst now fails.
	err := dst.Set(PropertyParallelism, 6)
	require.ErrorIs(t, err, ErrPermanentConflict)

	// non-permanent entries remain overridable on dst.
	require.NoError(t, dst.Set(PropertyDataStore, DataStoreDisk))
}

func TestPropertyBag_CopyToStopsAtFirstConflict(t *testing.T) {
	src := NewPropertyBag()
	require.NoError(t, src.SetPermanently(PropertyParallelism, 5))

	dst := NewPropertyBag()
	require.NoError(t, dst.SetPermanently(PropertyParallelism, 9))

	err := src.CopyTo(dst)
	require.ErrorIs(t, err, ErrPermanentConflict)
}

func TestCommPattern_Validate(t *testing.T) {
	require.NoError(t, CommShuffle.validate())
	require.NoError(t, CommOneToOne.validate())
	require.NoError(t, CommBroadCast.validate())
	require.Error(t, CommPattern("Reduce").validate())
}

func TestPropertyBag_OpaqueKindsOnlyCheckedForNil(t *testing.T) {
	b := NewPropertyBag()
	require.Error(t, b.Set(PropertyKeyExtractor, nil))
	require.NoError(t, b.Set(PropertyKeyExtractor, struct{}{}))
}

func TestPropertyBag_Kinds(t *testing.T) {
	b := NewPropertyBag()
	require.NoError(t, b.Set(PropertyParallelism, 1))
	require.NoError(t, b.Set(PropertyDataStore, DataStoreMemory))

	kinds := b.Kinds()
	require.Len(t, kinds, 2)
	require.Contains(t, kinds, PropertyParallelism)
	require.Contains(t, kinds, PropertyDataStore)
}
