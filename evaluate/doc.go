// SPDX-License-Identifier: MIT

// Package evaluate computes classification metrics for a trained model
// against stored ground truth.
//
// Everything is derived from a fresh forward pass compared against the
// labels, never estimated: overall and top-k accuracy, per-class
// precision/recall/F1 with macro and support-weighted aggregates, and a
// full C×C confusion matrix whose cell sum always equals the number of
// evaluated nodes.
//
// Classes absent from the evaluation subset report precision and recall
// of 0 by explicit convention, never NaN, and are listed by name so a
// thin labeled set is visible instead of silently flattering the scores.
package evaluate
