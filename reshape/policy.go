//
// skewreshape is part of the flowc dataflow compiler.
//
// Copyright (C) 2026 The flowc Authors. All rights reserved.
//
// skewreshape is licensed under the Apache License Version 2.0.
//
//

// Package reshape implements the Sampling Skew-Reshaping Pass: it
// rewrites shuffle edges feeding a candidate operator so that a sampled
// sub-pipeline collects key-size statistics, aggregates them, and ties
// the aggregation to the rewritten edge via a MetricCollection id.
package reshape

import "fmt"

// Policy configures the sampling strategy. The zero value is not valid;
// construct a Reshaper with New, which applies DefaultPolicy and then
// any Options.
type Policy struct {
	// SampleRate is the fraction of source tasks to sample, 0 < r <= 1.
	SampleRate float64
	// HashRangeMultiplier scales destination parallelism into the
	// statistics hash range MetricCollect buckets into.
	HashRangeMultiplier int
	// RNGSeed fixes the shuffle of task indices for reproducibility. A
	// nil seed falls back to a time-derived seed, suitable only for
	// tests/demos that don't assert on exact sampled indices.
	RNGSeed *int64
}

// DefaultPolicy matches the values the original runtime pass used as
// constants (spec.md §4.4, §4.5).
var DefaultPolicy = Policy{
	SampleRate:          0.1,
	HashRangeMultiplier: 10,
}

func (p Policy) validate() error {
	if p.SampleRate <= 0 || p.SampleRate > 1 {
		return fmt.Errorf("reshape: sample rate must satisfy 0 < r <= 1, got %v", p.SampleRate)
	}
	if p.HashRangeMultiplier <= 0 {
		return fmt.Errorf("reshape: hash range multiplier must be positive, got %v", p.HashRangeMultiplier)
	}
	return nil
}

// Option configures a Reshaper at construction time.
type Option func(*Policy)

// WithSampleRate overrides the fraction of source tasks to sample.
func WithSampleRate(rate float64) Option {
	return func(p *Policy) { p.SampleRate = rate }
}

// WithHashRangeMultiplier overrides the statistics hash range multiplier.
func WithHashRangeMultiplier(multiplier int) Option {
	return func(p *Policy) { p.HashRangeMultiplier = multiplier }
}

// WithRNGSeed fixes the RNG seed used to choose sampled task indices,
// making Apply deterministic across runs for identical inputs.
func WithRNGSeed(seed int64) Option {
	return func(p *Policy) { p.RNGSeed = &seed }
}
