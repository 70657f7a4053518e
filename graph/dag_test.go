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

func buildDiamond(t *testing.T) (*DAG, Vertex, Vertex, Vertex, Vertex) {
	t.Helper()
	src := NewOperatorVertex(nil)
	left := NewOperatorVertex(nil)
	right := NewOperatorVertex(nil)
	sink := NewOperatorVertex(nil)

	bd := NewBuilder()
	for _, v := range []Vertex{src, left, right, sink} {
		bd.AddVertex(v)
	}
	bd.ConnectVertices(NewEdge(CommOneToOne, src, left))
	bd.ConnectVertices(NewEdge(CommOneToOne, src, right))
	bd.ConnectVertices(NewEdge(CommShuffle, left, sink))
	bd.ConnectVertices(NewEdge(CommShuffle, right, sink))

	dag, err := bd.Build()
	require.NoError(t, err)
	return dag, src, left, right, sink
}

func TestDAG_IncomingOutgoingEdges(t *testing.T) {
	dag, src, left, right, sink := buildDiamond(t)

	require.Len(t, dag.OutgoingEdgesOf(src), 2)
	require.Len(t, dag.IncomingEdgesOf(sink), 2)
	require.Empty(t, dag.IncomingEdgesOf(src))
	require.Empty(t, dag.OutgoingEdgesOf(sink))
	require.Len(t, dag.IncomingEdgesOf(left), 1)
	require.Len(t, dag.IncomingEdgesOf(right), 1)
}

func TestDAG_VertexByID(t *testing.T) {
	dag, src, _, _, _ := buildDiamond(t)

	got, ok := dag.VertexByID(src.ID())
	require.True(t, ok)
	require.Equal(t, src, got)

	_, ok = dag.VertexByID("does-not-exist")
	require.False(t, ok)
}

func TestDAG_EdgesAreOrderedByID(t *testing.T) {
	dag, _, _, _, sink := buildDiamond(t)

	incoming := dag.IncomingEdgesOf(sink)
	require.Len(t, incoming, 2)
	require.True(t, incoming[0].ID() < incoming[1].ID())
}

func TestDAG_TopologicalDoStopsOnFirstError(t *testing.T) {
	dag, _, _, _, _ := buildDiamond(t)

	sentinel := errVisitStopped
	visited := 0
	err := dag.TopologicalDo(func(v Vertex) error {
		visited++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, visited)
}

var errVisitStopped = &visitStoppedError{}

type visitStoppedError struct{}

func (*visitStoppedError) Error() string { return "visit stopped" }
