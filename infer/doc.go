// SPDX-License-Identifier: MIT

// Package infer serves ranked property predictions for arbitrary schema
// snapshots from a frozen parameter snapshot.
//
// The engine replays the training-time pipeline over the incoming
// fields: encode, build the graph, run one forward pass, softmax the
// logits into a full per-node probability distribution and return the
// top-k candidates sorted by descending confidence, lexicographic
// property order breaking ties. The full distribution sums to 1 within
// floating tolerance; top-k only truncates it.
//
// An Engine is immutable after construction and safe for concurrent
// Predict calls.
package infer
