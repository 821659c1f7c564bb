// SPDX-License-Identifier: MIT

// Package gcn implements the graph-convolutional classifier: a stack of
// layers H^(l+1) = ReLU(Â·H^(l)·W^(l) + b^(l)) with a final linear layer
// emitting raw logits, plus a hand-written exact backward pass.
//
// There is no autodiff. Forward records every intermediate the gradient
// computation needs into an explicit Cache; Backward replays that tape in
// reverse using closed-form matrix-calculus rules. Because Â is fixed and
// symmetric, the gradient through the aggregation Â·H is again a left
// multiplication by Â.
//
// All randomness is confined to NewModel's explicit seed; a seeded model
// is bit-reproducible. Trained parameters freeze into a Snapshot that
// round-trips through JSON and fully determines inference.
package gcn
