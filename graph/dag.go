//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package graph

import "sort"

// DAG is an immutable, acyclic graph value produced by Builder.Build. It
// precomputes adjacency maps and a deterministic topological order so
// that repeated traversals (the reshaping pass walks the DAG once but
// tests and other passes may walk it many times) are cheap and stable.
type DAG struct {
	vertices map[string]Vertex
	edges    map[string]*Edge
	incoming map[string][]*Edge
	outgoing map[string][]*Edge
	order    []string // vertex ids in deterministic topological order
}

// Vertices returns every vertex in the DAG, in no particular order.
func (d *DAG) Vertices() []Vertex {
	out := make([]Vertex, 0, len(d.vertices))
	for _, v := range d.vertices {
		out = append(out, v)
	}
	return out
}

// Edges returns every edge in the DAG, in no particular order.
func (d *DAG) Edges() []*Edge {
	out := make([]*Edge, 0, len(d.edges))
	for _, e := range d.edges {
		out = append(out, e)
	}
	return out
}

// VertexByID looks up a vertex by id.
func (d *DAG) VertexByID(id string) (Vertex, bool) {
	v, ok := d.vertices[id]
	return v, ok
}

// IncomingEdgesOf returns the edges whose destination is v, ordered by
// edge id for determinism.
func (d *DAG) IncomingEdgesOf(v Vertex) []*Edge {
	return append([]*Edge(nil), d.incoming[v.ID()]...)
}

// OutgoingEdgesOf returns the edges whose source is v, ordered by edge id
// for determinism.
func (d *DAG) OutgoingEdgesOf(v Vertex) []*Edge {
	return append([]*Edge(nil), d.outgoing[v.ID()]...)
}

// TopologicalDo invokes fn on every vertex exactly once, after all of its
// predecessors, breaking ties lexicographically on vertex id. It stops
// and returns the first error fn returns.
func (d *DAG) TopologicalDo(fn func(Vertex) error) error {
	for _, id := range d.order {
		if err := fn(d.vertices[id]); err != nil {
			return err
		}
	}
	return nil
}

// sortEdgesByID sorts edges in place by id for deterministic iteration.
func sortEdgesByID(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].id < edges[j].id })
}
