// SPDX-License-Identifier: MIT
// Package matrix: canonical linear-algebra kernels for the learner.
//
// Purpose:
//   - Declare the multiplication/elementwise/broadcast kernels used by the
//     graph-convolution forward and backward passes.
//   - Keep a uniform shape: validate via central validators, allocate one
//     result, run a *Dense fast-path over flat slices, fall back to At/Set.
//
// Notes:
//   - MulAT and MulBT exist so backpropagation never materializes a
//     transpose: gradW needs AᵀB, gradH needs ABᵀ.
//   - All loop orders are fixed; results are bit-stable across runs.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial accumulator value for dot-product loops.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping (no magic strings).
const (
	opAdd        = "Add"
	opMul        = "Mul"
	opMulAT      = "MulAT"
	opMulBT      = "MulBT"
	opScale      = "Scale"
	opHadamard   = "Hadamard"
	opAddRow     = "AddRowBroadcast"
	opColSums    = "ColSums"
	opAddScaled  = "AddScaledInPlace"
	opRowSoftmax = "RowSoftmax"
)

// matrixErrorf wraps err with an operation tag, preserving the original
// error via %w. Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// asDense returns the concrete *Dense behind m when available.
func asDense(m Matrix) (*Dense, bool) {
	d, ok := m.(*Dense)
	return d, ok
}

// Add computes the element-wise sum C = A + B into a fresh Dense.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Determinism: flat 0..n-1 fast-path; i→j fallback.
// Complexity: Time O(r*c), Space O(r*c).
func Add(a, b Matrix) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	// Fast path: *Dense with *Dense → single flat loop.
	if da, okA := asDense(a); okA {
		if db, okB := asDense(b); okB {
			n := rows * cols
			for idx := 0; idx < n; idx++ {
				res.data[idx] = da.data[idx] + db.data[idx]
			}

			return res, nil
		}
	}

	// Fallback: interface path with fixed i→j order.
	var i, j int
	var av, bv float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opAdd, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opAdd, err)
			}
			if err = res.Set(i, j, av+bv); err != nil {
				return nil, matrixErrorf(opAdd, err)
			}
		}
	}

	return res, nil
}

// Mul performs standard matrix multiplication C = A × B (no aliasing).
//
// Implementation:
//   - Stage 1: validate A,B non-nil and A.Cols == B.Rows.
//   - Stage 2: *Dense fast-path uses i→k→j with row-major strides and
//     skips zero A[i,k]; fallback uses i→j→k via At/Set.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var (
		i, j, k         int
		av, bv, current float64
	)
	if da, okA := asDense(a); okA {
		if db, okB := asDense(b); okB {
			var rowA, rowB, rowR int
			for i = 0; i < aRows; i++ {
				rowA = i * aCols
				rowR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowA+k]
					if av == 0 {
						continue // skip zero for performance
					}
					rowB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowR+j] += av * db.data[rowB+j]
					}
				}
			}

			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k).
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			current = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				if av == 0 {
					continue
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, err)
				}
				current += av * bv
			}
			if err = res.Set(i, j, current); err != nil {
				return nil, matrixErrorf(opMul, err)
			}
		}
	}

	return res, nil
}

// MulAT computes C = Aᵀ × B without materializing Aᵀ.
// Shapes: A is (n×r), B is (n×c) → C is (r×c).
//
// The backward pass uses this for weight gradients: dW = (Â·H)ᵀ · dZ.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (A.Rows != B.Rows).
// Determinism: fixed k→i→j accumulation order.
// Complexity: Time O(n*r*c), Space O(r*c).
func MulAT(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMulAT, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMulAT, err)
	}
	if a.Rows() != b.Rows() {
		return nil, matrixErrorf(opMulAT, ErrDimensionMismatch)
	}

	n, r, c := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMulAT, err)
	}

	var (
		i, j, k int
		av, bv  float64
	)
	if da, okA := asDense(a); okA {
		if db, okB := asDense(b); okB {
			var rowA, rowB int
			for k = 0; k < n; k++ { // walk shared dimension outermost: both reads stay row-major
				rowA = k * r
				rowB = k * c
				for i = 0; i < r; i++ {
					av = da.data[rowA+i]
					if av == 0 {
						continue
					}
					for j = 0; j < c; j++ {
						res.data[i*c+j] += av * db.data[rowB+j]
					}
				}
			}

			return res, nil
		}
	}

	for k = 0; k < n; k++ {
		for i = 0; i < r; i++ {
			if av, err = a.At(k, i); err != nil {
				return nil, matrixErrorf(opMulAT, err)
			}
			if av == 0 {
				continue
			}
			for j = 0; j < c; j++ {
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMulAT, err)
				}
				cur, aerr := res.At(i, j)
				if aerr != nil {
					return nil, matrixErrorf(opMulAT, aerr)
				}
				if err = res.Set(i, j, cur+av*bv); err != nil {
					return nil, matrixErrorf(opMulAT, err)
				}
			}
		}
	}

	return res, nil
}

// MulBT computes C = A × Bᵀ without materializing Bᵀ.
// Shapes: A is (r×n), B is (c×n) → C is (r×c).
//
// The backward pass uses this to push gradients through a linear layer:
// dH = dZ · Wᵀ.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (A.Cols != B.Cols).
// Determinism: fixed i→j→k dot-product order.
// Complexity: Time O(r*c*n), Space O(r*c).
func MulBT(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMulBT, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMulBT, err)
	}
	if a.Cols() != b.Cols() {
		return nil, matrixErrorf(opMulBT, ErrDimensionMismatch)
	}

	r, n, c := a.Rows(), a.Cols(), b.Rows()
	res, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMulBT, err)
	}

	var (
		i, j, k int
		acc     float64
	)
	if da, okA := asDense(a); okA {
		if db, okB := asDense(b); okB {
			var rowA, rowB int
			for i = 0; i < r; i++ {
				rowA = i * n
				for j = 0; j < c; j++ {
					rowB = j * n
					acc = ZeroSum
					for k = 0; k < n; k++ { // both operands walk contiguous rows
						acc += da.data[rowA+k] * db.data[rowB+k]
					}
					res.data[i*c+j] = acc
				}
			}

			return res, nil
		}
	}

	var av, bv float64
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			acc = ZeroSum
			for k = 0; k < n; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMulBT, err)
				}
				if bv, err = b.At(j, k); err != nil {
					return nil, matrixErrorf(opMulBT, err)
				}
				acc += av * bv
			}
			if err = res.Set(i, j, acc); err != nil {
				return nil, matrixErrorf(opMulBT, err)
			}
		}
	}

	return res, nil
}

// Scale returns a fresh Dense whose elements are alpha * m[i,j].
// Errors: ErrNilMatrix. Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	if dm, ok := asDense(m); ok {
		n := rows * cols
		for idx := 0; idx < n; idx++ {
			res.data[idx] = dm.data[idx] * alpha
		}

		return res, nil
	}

	var v float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
			if err = res.Set(i, j, v*alpha); err != nil {
				return nil, matrixErrorf(opScale, err)
			}
		}
	}

	return res, nil
}

// Hadamard computes the elementwise product (a ⊙ b) into a fresh Dense.
// Used to apply the rectifier derivative mask during backpropagation.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*c), Space O(r*c).
func Hadamard(a, b Matrix) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}

	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}

	if da, okA := asDense(a); okA {
		if db, okB := asDense(b); okB {
			n := rows * cols
			for idx := 0; idx < n; idx++ {
				res.data[idx] = da.data[idx] * db.data[idx]
			}

			return res, nil
		}
	}

	var av, bv float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opHadamard, err)
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opHadamard, err)
			}
			if err = res.Set(i, j, av*bv); err != nil {
				return nil, matrixErrorf(opHadamard, err)
			}
		}
	}

	return res, nil
}

// AddRowBroadcast returns m + bias, adding bias[j] to every element of
// column j. This is the bias term of a graph-convolution layer.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(bias) != Cols).
// Complexity: Time O(r*c), Space O(r*c).
func AddRowBroadcast(m Matrix, bias []float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opAddRow, err)
	}
	if err := ValidateVecLen(bias, m.Cols()); err != nil {
		return nil, matrixErrorf(opAddRow, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opAddRow, err)
	}

	if dm, ok := asDense(m); ok {
		var base int
		for i := 0; i < rows; i++ {
			base = i * cols
			for j := 0; j < cols; j++ {
				res.data[base+j] = dm.data[base+j] + bias[j]
			}
		}

		return res, nil
	}

	var v float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opAddRow, err)
			}
			if err = res.Set(i, j, v+bias[j]); err != nil {
				return nil, matrixErrorf(opAddRow, err)
			}
		}
	}

	return res, nil
}

// ColSums returns the per-column sums of m as a vector of length Cols.
// This is the bias gradient: dB[j] = Σ_i dZ[i,j].
//
// Errors: ErrNilMatrix. Complexity: Time O(r*c), Space O(c).
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColSums, err)
	}

	rows, cols := m.Rows(), m.Cols()
	out := make([]float64, cols)

	if dm, ok := asDense(m); ok {
		var base int
		for i := 0; i < rows; i++ {
			base = i * cols
			for j := 0; j < cols; j++ {
				out[j] += dm.data[base+j]
			}
		}

		return out, nil
	}

	var v float64
	var err error
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opColSums, err)
			}
			out[j] += v
		}
	}

	return out, nil
}

// AddScaledInPlace mutates dst: dst += alpha * src. Both must be *Dense of
// identical shape. This is the only mutating kernel; the trainer uses it for
// the gradient-descent update dst -= lr*grad (alpha = -lr).
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: Time O(r*c), Space O(1).
func AddScaledInPlace(dst, src *Dense, alpha float64) error {
	if dst == nil || src == nil {
		return matrixErrorf(opAddScaled, ErrNilMatrix)
	}
	if dst.r != src.r || dst.c != src.c {
		return matrixErrorf(opAddScaled, ErrDimensionMismatch)
	}

	n := len(dst.data)
	for idx := 0; idx < n; idx++ {
		dst.data[idx] += alpha * src.data[idx]
	}

	return nil
}

// RowSoftmax returns the row-wise softmax of m.
//
// Numerical policy: the per-row maximum is subtracted before
// exponentiation, so exp never overflows regardless of logit magnitude;
// the row sum is then strictly positive and each row sums to 1.
//
// Errors: ErrNilMatrix, ErrNaNInf (non-finite input).
// Determinism: fixed i→j order, single pass per stage.
// Complexity: Time O(r*c), Space O(r*c).
func RowSoftmax(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRowSoftmax, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opRowSoftmax, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opRowSoftmax, err)
	}

	// Generic path is cheap enough here: softmax is O(r*c) and called once
	// per forward pass, not inside the hot multiply loops.
	var (
		i, j     int
		v, mx, s float64
	)
	for i = 0; i < rows; i++ {
		// Pass 1: per-row maximum (stabilization).
		mx = math.Inf(-1)
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opRowSoftmax, err)
			}
			if v > mx {
				mx = v
			}
		}
		// Pass 2: exponentiate shifted logits and accumulate the row sum.
		s = ZeroSum
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)
			v = math.Exp(v - mx)
			if err = res.Set(i, j, v); err != nil {
				return nil, matrixErrorf(opRowSoftmax, err)
			}
			s += v
		}
		// Pass 3: normalize. s >= 1 because the max element contributes exp(0)=1.
		for j = 0; j < cols; j++ {
			v, _ = res.At(i, j)
			_ = res.Set(i, j, v/s)
		}
	}

	return res, nil
}
