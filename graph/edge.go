//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package graph

import "github.com/google/uuid"

// Edge connects two vertices with a communication pattern and a property
// bag. Edges are immutable once returned by a Builder's Build: the
// reshaping pass never mutates an edge in place, it builds replacements.
type Edge struct {
	id      string
	src     Vertex
	dst     Vertex
	pattern CommPattern
	props   *PropertyBag
}

// NewEdge creates an edge with a fresh id.
func NewEdge(pattern CommPattern, src, dst Vertex) *Edge {
	return &Edge{
		id:      uuid.NewString(),
		src:     src,
		dst:     dst,
		pattern: pattern,
		props:   NewPropertyBag(),
	}
}

func (e *Edge) ID() string               { return e.id }
func (e *Edge) Src() Vertex              { return e.src }
func (e *Edge) Dst() Vertex              { return e.dst }
func (e *Edge) Pattern() CommPattern     { return e.pattern }
func (e *Edge) Properties() *PropertyBag { return e.props }

// CopyExecutionPropertiesTo copies e's property bag onto other,
// preserving permanent markers, and returns the first conflict, if any.
func (e *Edge) CopyExecutionPropertiesTo(other *Edge) error {
	return e.props.CopyTo(other.props)
}
