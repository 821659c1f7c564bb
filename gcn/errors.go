// SPDX-License-Identifier: MIT

package gcn

import "errors"

var (
	// ErrBadArchitecture is returned when the layer width list is too
	// short or contains a non-positive width.
	ErrBadArchitecture = errors.New("gcn: invalid layer architecture")

	// ErrShapeMismatch is returned when an input matrix does not match
	// the shape the architecture dictates, e.g. a feature matrix whose
	// width differs from the model's input dimension.
	ErrShapeMismatch = errors.New("gcn: shape mismatch")

	// ErrNoTargets is returned by the loss when the index set of nodes
	// to score is empty.
	ErrNoTargets = errors.New("gcn: no target nodes for loss")

	// ErrBadSnapshot is returned when a serialized snapshot is
	// structurally inconsistent and cannot rebuild a model.
	ErrBadSnapshot = errors.New("gcn: invalid model snapshot")
)
