// SPDX-License-Identifier: MIT

package evaluate

import "errors"

var (
	// ErrNoEvalNodes is returned when no labeled node is available to
	// score.
	ErrNoEvalNodes = errors.New("evaluate: no labeled nodes to evaluate")

	// ErrBadK is returned for a non-positive top-k rank.
	ErrBadK = errors.New("evaluate: top-k rank must be positive")

	// ErrBadNodeIndex is returned when a requested node index does not
	// exist in the graph at all. Unlike a missing label, this is a
	// structural caller bug, never skipped.
	ErrBadNodeIndex = errors.New("evaluate: node index outside graph")

	// ErrUnknownLabel is returned when a ground-truth property is not
	// part of the vocabulary.
	ErrUnknownLabel = errors.New("evaluate: ground-truth label outside vocabulary")
)
