// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra kernels used by the
// schema-mapping learner: row-major float64 matrices with safe accessors,
// multiplication variants shaped for backpropagation (Mul, MulAT, MulBT),
// elementwise products, row broadcasts, and a numerically stabilized
// row-wise softmax.
//
// Design rules, shared by every kernel:
//
//   - Deterministic loop orders. No map iteration, no data-dependent
//     traversal; identical inputs always produce bit-identical outputs.
//   - Fail-fast validation. Every public kernel validates its operands via
//     the central validators and returns plain sentinel errors wrapped with
//     an operation tag; nothing panics on user input.
//   - Fast-path on *Dense. Kernels operate on the flat backing slice when
//     both operands are *Dense and fall back to At/Set for any other
//     Matrix implementation, in a fixed i→j order.
//   - No hidden aliasing. Kernels allocate fresh results and never mutate
//     their operands unless the name says so (AddScaledInPlace).
//
// Matrices here are small and dense (schema graphs are tens to a few
// thousand nodes), so O(V²) memory and cubic multiplication are the right
// trade; there is intentionally no sparse representation.
package matrix
