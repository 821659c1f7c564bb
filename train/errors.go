// SPDX-License-Identifier: MIT

package train

import "errors"

var (
	// ErrBadConfig is returned when a Config field is out of range.
	ErrBadConfig = errors.New("train: invalid config")

	// ErrNoLabeledNodes is returned when the graph carries no ground
	// truth at all; there is nothing to fit.
	ErrNoLabeledNodes = errors.New("train: no labeled nodes")

	// ErrUnknownLabel is returned when a field's ground-truth property
	// is not part of the vocabulary. Labels are a closed set; a typo in
	// training data must surface, not silently drop the node.
	ErrUnknownLabel = errors.New("train: ground-truth label outside vocabulary")

	// ErrTrainingDiverged is returned when a loss goes NaN/Inf. The run
	// aborts and partial parameters are discarded.
	ErrTrainingDiverged = errors.New("train: training diverged")
)
