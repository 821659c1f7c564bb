// SPDX-License-Identifier: MIT

// Package train runs the supervised full-batch training loop over a
// schema graph's labeled node subset.
//
// Each epoch runs one forward pass over the whole graph, scores a
// class-weighted cross-entropy loss on the labeled training nodes only,
// backpropagates through the explicit tape and applies a gradient-descent
// update. Class weights are 1/frequency, normalized so present-class
// weights sum to the class count, so rare properties are not drowned out
// by frequent ones.
//
// Early stopping tracks the best validation loss seen; the returned
// snapshot is always the one that achieved that best loss, never the
// final epoch's parameters unless the final epoch is the best. A
// non-finite loss aborts the run immediately and discards partial
// parameters; fewer labeled nodes than classes is not fatal here, the
// evaluation layer flags the low-support classes instead.
package train
