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

// VertexKind distinguishes the two vertex variants the pass knows about.
type VertexKind string

const (
	VertexSource   VertexKind = "Source"
	VertexOperator VertexKind = "Operator"
)

// Transform is the runtime-dispatched behaviour an OperatorVertex carries.
// It is kept outside the property bag (as the original IR does) because
// it is not a closed-domain value but arbitrary per-vertex logic; the
// reshaping pass never inspects a Transform's internals, only attaches
// one produced by the transform package's factories.
type Transform interface {
	// Accumulate folds one input element into the transform's internal
	// state and returns zero or more elements to emit immediately.
	Accumulate(element any) ([]any, error)
	// Close flushes any buffered state and returns the final elements to
	// emit. It is called exactly once, after the last Accumulate.
	Close() ([]any, error)
}

// Vertex is the common contract of SourceVertex and OperatorVertex: a
// stable identity, a variant tag, a property bag, and the cloning
// operations the reshaping pass relies on.
type Vertex interface {
	ID() string
	Kind() VertexKind
	Properties() *PropertyBag
	// CopyExecutionPropertiesTo copies this vertex's property bag onto
	// other, preserving permanent markers.
	CopyExecutionPropertiesTo(other Vertex) error
}

// base holds the identity and property bag shared by every vertex
// variant, so CopyExecutionPropertiesTo and Properties are implemented
// exactly once.
type base struct {
	id    string
	props *PropertyBag
}

func newBase() base {
	return base{id: uuid.NewString(), props: NewPropertyBag()}
}

func (b *base) ID() string              { return b.id }
func (b *base) Properties() *PropertyBag { return b.props }

func (b *base) copyPropertiesTo(other Vertex) error {
	return b.props.CopyTo(other.Properties())
}

// SourceVertex represents a data source. Name is an opaque label carried
// through cloning for diagnostics; the real source-reading behaviour
// (e.g. which file/partition a task reads) lives outside this module in
// the front-end translator's concrete source implementation, which is
// expected to implement sampling itself and simply report the index
// window it was restricted to via SampledClone.
type SourceVertex struct {
	base
	Name string

	// sampledIndices and sampledOriginalParallelism are set on clones
	// returned by SampledClone, recording which task indices (out of
	// which original parallelism) this clone is restricted to. They are
	// diagnostic only: the runtime-visible restriction travels through
	// the ShuffleDistribution/OneToOneDistribution properties the
	// reshaping pass stamps on the clone's incoming edges.
	sampledIndices             []int
	sampledOriginalParallelism int
}

// NewSourceVertex creates a source vertex with a fresh id.
func NewSourceVertex(name string) *SourceVertex {
	return &SourceVertex{base: newBase(), Name: name}
}

func (s *SourceVertex) Kind() VertexKind { return VertexSource }

func (s *SourceVertex) CopyExecutionPropertiesTo(other Vertex) error {
	return s.copyPropertiesTo(other)
}

// SampledClone returns a fresh SourceVertex whose output is restricted to
// the union of the original source's outputs at the given task indices
// out of originalParallelism. The clone does not copy properties; callers
// (the reshaping pass) call CopyExecutionPropertiesTo separately so the
// Parallelism override can happen in one place.
func (s *SourceVertex) SampledClone(indices []int, originalParallelism int) *SourceVertex {
	idx := make([]int, len(indices))
	copy(idx, indices)
	return &SourceVertex{
		base:                 newBase(),
		Name:                 s.Name,
		sampledIndices:       idx,
		sampledOriginalParallelism: originalParallelism,
	}
}

// SampledIndices returns the task indices this clone was restricted to,
// and the original parallelism they are relative to. ok is false for a
// vertex that was not produced by SampledClone.
func (s *SourceVertex) SampledIndices() (indices []int, originalParallelism int, ok bool) {
	if s.sampledIndices == nil {
		return nil, 0, false
	}
	return s.sampledIndices, s.sampledOriginalParallelism, true
}

// OperatorVertex represents a transform stage: either a front-end
// user-defined operator (Transform left nil, opaque to this pass) or one
// of the two transforms this pass itself inserts (MetricCollect,
// AggregateMetric), produced by the transform package's factories.
type OperatorVertex struct {
	base
	Transform Transform
}

// NewOperatorVertex creates an operator vertex with a fresh id and the
// given transform (nil is valid: an opaque pass-through placeholder, used
// for the aggregation fixture's dummy control vertex).
func NewOperatorVertex(t Transform) *OperatorVertex {
	return &OperatorVertex{base: newBase(), Transform: t}
}

func (o *OperatorVertex) Kind() VertexKind { return VertexOperator }

func (o *OperatorVertex) CopyExecutionPropertiesTo(other Vertex) error {
	return o.copyPropertiesTo(other)
}

// Clone returns a structural copy of o with a fresh id and the same
// Transform reference (transforms are stateless at construction; all
// mutable state lives inside a runtime instantiation, not in this value).
func (o *OperatorVertex) Clone() *OperatorVertex {
	return &OperatorVertex{base: newBase(), Transform: o.Transform}
}
