//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

package graph

import "errors"

// Sentinel errors for the property model and DAG builder. Callers should
// match on these with errors.Is; the wrapping fmt.Errorf calls that
// produce them add the offending vertex/edge id and property kind.
var (
	// ErrInvalidPropertyValue is returned when a property value falls
	// outside its kind's closed domain.
	ErrInvalidPropertyValue = errors.New("invalid property value")
	// ErrPermanentConflict is returned when a permanent property is set
	// again with a different value.
	ErrPermanentConflict = errors.New("permanent property conflict")
	// ErrUnknownEndpoint is returned by Builder.Build when an edge names
	// a vertex id that was never added.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")
	// ErrCycleDetected is returned by Builder.Build when the accumulated
	// graph is not acyclic.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrDuplicateEdge is returned by Builder.Build when two edges share
	// the same id but differ in content.
	ErrDuplicateEdge = errors.New("duplicate edge id")
	// ErrMissingRequiredProperty is returned when a property the caller
	// must read (Parallelism, CommunicationPattern, a shuffle edge's
	// KeyExtractor, a OneToOne edge's DataStore, ...) is absent.
	ErrMissingRequiredProperty = errors.New("missing required property")
	// ErrUnsupportedCommunicationPattern is returned when an edge carries
	// a communication pattern this pass does not know how to mirror.
	ErrUnsupportedCommunicationPattern = errors.New("unsupported communication pattern")
)
