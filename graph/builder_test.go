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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleChainTopologicalOrder(t *testing.T) {
	a := NewOperatorVertex(nil)
	b := NewOperatorVertex(nil)
	c := NewOperatorVertex(nil)

	bd := NewBuilder()
	bd.AddVertex(a)
	bd.AddVertex(b)
	bd.AddVertex(c)
	bd.ConnectVertices(NewEdge(CommOneToOne, a, b))
	bd.ConnectVertices(NewEdge(CommOneToOne, b, c))

	dag, err := bd.Build()
	require.NoError(t, err)

	var visited []string
	require.NoError(t, dag.TopologicalDo(func(v Vertex) error {
		visited = append(visited, v.ID())
		return nil
	}))
	require.Equal(t, []string{a.ID(), b.ID(), c.ID()}, visited)
}

func TestBuilder_UnknownEndpointBatchesErrors(t *testing.T) {
	a := NewOperatorVertex(nil)
	ghost := NewOperatorVertex(nil)

	bd := NewBuilder()
	bd.AddVertex(a)
	bd.ConnectVertices(NewEdge(CommOneToOne, a, ghost))
	bd.ConnectVertices(NewEdge(CommOneToOne, ghost, a))

	_, err := bd.Build()
	require.ErrorIs(t, err, ErrUnknownEndpoint)
	require.Contains(t, err.Error(), ghost.ID())
}

func TestBuilder_CycleDetected(t *testing.T) {
	a := NewOperatorVertex(nil)
	b := NewOperatorVertex(nil)

	bd := NewBuilder()
	bd.AddVertex(a)
	bd.AddVertex(b)
	bd.ConnectVertices(NewEdge(CommOneToOne, a, b))
	bd.ConnectVertices(NewEdge(CommOneToOne, b, a))

	_, err := bd.Build()
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestBuilder_AddVertexIdempotent(t *testing.T) {
	a := NewOperatorVertex(nil)
	bd := NewBuilder()
	bd.AddVertex(a)
	bd.AddVertex(a)

	dag, err := bd.Build()
	require.NoError(t, err)
	require.Len(t, dag.Vertices(), 1)
}

func TestBuilder_LexicographicTieBreak(t *testing.T) {
	// Two independent roots feeding one sink: with no edge ordering
	// constraint between the roots, the traversal must still be
	// deterministic across repeated Build calls on the same input.
	root1 := NewOperatorVertex(nil)
	root2 := NewOperatorVertex(nil)
	sink := NewOperatorVertex(nil)

	build := func() []string {
		bd := NewBuilder()
		bd.AddVertex(root1)
		bd.AddVertex(root2)
		bd.AddVertex(sink)
		bd.ConnectVertices(NewEdge(CommOneToOne, root1, sink))
		bd.ConnectVertices(NewEdge(CommOneToOne, root2, sink))
		dag, err := bd.Build()
		require.NoError(t, err)
		var order []string
		require.NoError(t, dag.TopologicalDo(func(v Vertex) error {
			order = append(order, v.ID())
			return nil
		}))
		return order
	}

	first := build()
	second := build()
	require.Equal(t, first, second)
	require.Less(t, first[0], first[1], "the two roots are visited in lexicographic id order")
	require.Equal(t, sink.ID(), first[2])
}
