// SPDX-License-Identifier: MIT

package schemagraph

import "fmt"

// Options configures edge generation and normalization. Zero rule weights
// disable the corresponding rule entirely.
type Options struct {
	// SimilarityThreshold is the minimum Dice coefficient between two
	// tokenized field names for the similar_name rule to fire. Must lie
	// in [0, 1].
	SimilarityThreshold float64

	// Per-rule edge weights. Matches of several rules on one pair sum.
	SameTableWeight   float64
	ForeignKeyWeight  float64
	SimilarNameWeight float64

	// SelfLoopWeight is added to every diagonal entry before
	// normalization. Must be positive so isolated nodes keep a
	// nonzero degree.
	SelfLoopWeight float64
}

// DefaultOptions returns the standard configuration: all rules enabled at
// unit weight and a 0.6 name-similarity threshold.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.6,
		SameTableWeight:     1.0,
		ForeignKeyWeight:    1.0,
		SimilarNameWeight:   1.0,
		SelfLoopWeight:      1.0,
	}
}

// validate rejects out-of-range option values with ErrBadOptions.
func (o Options) validate() error {
	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity threshold %v outside [0,1]",
			ErrBadOptions, o.SimilarityThreshold)
	}
	if o.SameTableWeight < 0 || o.ForeignKeyWeight < 0 || o.SimilarNameWeight < 0 {
		return fmt.Errorf("%w: negative rule weight", ErrBadOptions)
	}
	if o.SelfLoopWeight <= 0 {
		return fmt.Errorf("%w: self-loop weight %v must be positive",
			ErrBadOptions, o.SelfLoopWeight)
	}

	return nil
}
