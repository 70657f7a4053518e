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
	"container/heap"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Builder accumulates vertices and edges and produces a validated DAG on
// Build. AddVertex and ConnectVertices may be called in any order; all
// endpoint and acyclicity checks are deferred to Build so the builder
// itself never fails mid-construction.
type Builder struct {
	vertices map[string]Vertex
	edges    []*Edge
	edgeIDs  map[string]*Edge
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		vertices: make(map[string]Vertex),
		edgeIDs:  make(map[string]*Edge),
	}
}

// AddVertex registers v. Adding the same vertex id twice is idempotent:
// the second call is a no-op, even if the Vertex value differs, since
// the reshaping pass re-adds non-candidate vertices on every visit.
func (b *Builder) AddVertex(v Vertex) {
	if _, exists := b.vertices[v.ID()]; exists {
		return
	}
	b.vertices[v.ID()] = v
}

// ConnectVertices registers e. Endpoint existence is not checked until
// Build, so edges may be added before or after their endpoints.
func (b *Builder) ConnectVertices(e *Edge) {
	if prev, exists := b.edgeIDs[e.id]; exists && prev != e {
		// Same id, different edge value: keep the first, Build will not
		// silently merge these. Record both so Build can report it.
		b.edges = append(b.edges, e)
		return
	}
	b.edgeIDs[e.id] = e
	b.edges = append(b.edges, e)
}

// Build validates the accumulated graph and returns the immutable DAG.
// It fails with ErrUnknownEndpoint if any edge names a vertex id that
// was never added, and with ErrCycleDetected if the graph is not
// acyclic. Unknown-endpoint errors are batched into a single
// *multierror.Error so every offending edge is reported at once.
func (b *Builder) Build() (*DAG, error) {
	var merr *multierror.Error
	seen := make(map[string]*Edge, len(b.edges))
	for _, e := range b.edges {
		if prev, ok := seen[e.id]; ok && prev != e {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s", ErrDuplicateEdge, e.id))
			continue
		}
		seen[e.id] = e
		if _, ok := b.vertices[e.src.ID()]; !ok {
			merr = multierror.Append(merr, fmt.Errorf("%w: edge %s references source %s", ErrUnknownEndpoint, e.id, e.src.ID()))
		}
		if _, ok := b.vertices[e.dst.ID()]; !ok {
			merr = multierror.Append(merr, fmt.Errorf("%w: edge %s references destination %s", ErrUnknownEndpoint, e.id, e.dst.ID()))
		}
	}
	if merr != nil {
		return nil, merr.ErrorOrNil()
	}

	incoming := make(map[string][]*Edge, len(b.vertices))
	outgoing := make(map[string][]*Edge, len(b.vertices))
	for _, e := range b.edges {
		outgoing[e.src.ID()] = append(outgoing[e.src.ID()], e)
		incoming[e.dst.ID()] = append(incoming[e.dst.ID()], e)
	}
	for id := range incoming {
		sortEdgesByID(incoming[id])
	}
	for id := range outgoing {
		sortEdgesByID(outgoing[id])
	}

	order, err := topologicalOrder(b.vertices, incoming, outgoing)
	if err != nil {
		return nil, err
	}

	edgeIndex := make(map[string]*Edge, len(b.edges))
	for _, e := range b.edges {
		edgeIndex[e.id] = e
	}

	verticesCopy := make(map[string]Vertex, len(b.vertices))
	for id, v := range b.vertices {
		verticesCopy[id] = v
	}

	return &DAG{
		vertices: verticesCopy,
		edges:    edgeIndex,
		incoming: incoming,
		outgoing: outgoing,
		order:    order,
	}, nil
}

// idHeap is a min-heap of vertex ids, used to break topological-sort ties
// lexicographically so the traversal order is deterministic.
type idHeap []string

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)         { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topologicalOrder runs Kahn's algorithm with a lexicographic tie-break,
// returning ErrCycleDetected if not every vertex can be ordered.
func topologicalOrder(vertices map[string]Vertex, incoming, outgoing map[string][]*Edge) ([]string, error) {
	indegree := make(map[string]int, len(vertices))
	ids := make([]string, 0, len(vertices))
	for id := range vertices {
		indegree[id] = len(incoming[id])
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ready := &idHeap{}
	for _, id := range ids {
		if indegree[id] == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]string, 0, len(vertices))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		next := make([]string, 0, len(outgoing[id]))
		for _, e := range outgoing[id] {
			next = append(next, e.dst.ID())
		}
		sort.Strings(next)
		for _, dstID := range next {
			indegree[dstID]--
			if indegree[dstID] == 0 {
				heap.Push(ready, dstID)
			}
		}
	}

	if len(order) != len(vertices) {
		return nil, fmt.Errorf("%w: %d of %d vertices are part of a cycle", ErrCycleDetected, len(vertices)-len(order), len(vertices))
	}
	return order, nil
}
