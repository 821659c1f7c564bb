// SPDX-License-Identifier: MIT

package schemagraph

import "errors"

var (
	// ErrNoFields is returned by Build when the field list is empty.
	// A graph with zero nodes has no meaningful adjacency; the caller
	// must not proceed.
	ErrNoFields = errors.New("schemagraph: no fields to build graph from")

	// ErrBadOptions is returned when an Options value is out of range,
	// e.g. a negative rule weight or a similarity threshold outside [0,1].
	ErrBadOptions = errors.New("schemagraph: invalid options")
)
