// SPDX-License-Identifier: MIT

package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/matrix"
)

// hide wraps a Matrix to defeat the *Dense type assertion, forcing kernels
// onto their generic At/Set fallback path.
type hide struct{ matrix.Matrix }

func newFilled(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	return m
}

func mustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)
	return v
}

func TestNewDense_BadShape(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDense(3, -1)
	assert.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDenseFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrBadShape, "ragged rows must be rejected")
}

func TestDense_AtSet_OutOfRange(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	err = m.Set(0, -1, 1.0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestMul_FastAndFallback_Match(t *testing.T) {
	t.Parallel()

	a := newFilled(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})  // 3x2
	b := newFilled(t, [][]float64{{7, 8, 9}, {10, 11, 12}}) // 2x3

	exp := [][]float64{
		{27, 30, 33},
		{61, 68, 75},
		{95, 106, 117},
	}

	fast, err := matrix.Mul(a, b)
	require.NoError(t, err)
	slow, err := matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, exp[i][j], mustAt(t, fast, i, j))
			assert.Equal(t, exp[i][j], mustAt(t, slow, i, j))
		}
	}
}

func TestMul_DimensionMismatch(t *testing.T) {
	a := newFilled(t, [][]float64{{1, 2}})
	b := newFilled(t, [][]float64{{1, 2}})

	_, err := matrix.Mul(a, b)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMulAT_MatchesExplicitTranspose(t *testing.T) {
	t.Parallel()

	// A is 3x2, B is 3x2 → AᵀB is 2x2.
	a := newFilled(t, [][]float64{{1, 4}, {2, 5}, {3, 6}})
	b := newFilled(t, [][]float64{{7, 10}, {8, 11}, {9, 12}})

	got, err := matrix.MulAT(a, b)
	require.NoError(t, err)

	// Aᵀ = [[1,2,3],[4,5,6]]; AᵀB computed by hand.
	exp := [][]float64{
		{50, 68},
		{122, 167},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, exp[i][j], mustAt(t, got, i, j), 1e-12)
		}
	}

	// Fallback path must agree exactly.
	slow, err := matrix.MulAT(hide{a}, hide{b})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, mustAt(t, got, i, j), mustAt(t, slow, i, j))
		}
	}
}

func TestMulBT_MatchesExplicitTranspose(t *testing.T) {
	t.Parallel()

	// A is 2x3, B is 2x3 → ABᵀ is 2x2.
	a := newFilled(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := newFilled(t, [][]float64{{7, 8, 9}, {10, 11, 12}})

	got, err := matrix.MulBT(a, b)
	require.NoError(t, err)

	exp := [][]float64{
		{50, 68},
		{122, 167},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, exp[i][j], mustAt(t, got, i, j), 1e-12)
		}
	}
}

func TestHadamard_And_Scale(t *testing.T) {
	a := newFilled(t, [][]float64{{1, -2}, {3, 0}})
	b := newFilled(t, [][]float64{{2, 2}, {-1, 5}})

	h, err := matrix.Hadamard(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, mustAt(t, h, 0, 0))
	assert.Equal(t, -4.0, mustAt(t, h, 0, 1))
	assert.Equal(t, -3.0, mustAt(t, h, 1, 0))
	assert.Equal(t, 0.0, mustAt(t, h, 1, 1))

	s, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	assert.Equal(t, -2.0, mustAt(t, s, 0, 0))
	assert.Equal(t, 4.0, mustAt(t, s, 0, 1))
}

func TestAddRowBroadcast_And_ColSums(t *testing.T) {
	m := newFilled(t, [][]float64{{1, 2, 3}, {4, 5, 6}})

	out, err := matrix.AddRowBroadcast(m, []float64{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, 11.0, mustAt(t, out, 0, 0))
	assert.Equal(t, 36.0, mustAt(t, out, 1, 2))

	_, err = matrix.AddRowBroadcast(m, []float64{1, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	sums, err := matrix.ColSums(m)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, sums)
}

func TestAddScaledInPlace_Update(t *testing.T) {
	w := newFilled(t, [][]float64{{1, 1}, {1, 1}})
	g := newFilled(t, [][]float64{{2, 4}, {6, 8}})

	// Gradient-descent shape: w -= 0.5 * g.
	require.NoError(t, matrix.AddScaledInPlace(w, g, -0.5))
	assert.Equal(t, 0.0, mustAt(t, w, 0, 0))
	assert.Equal(t, -1.0, mustAt(t, w, 0, 1))
	assert.Equal(t, -2.0, mustAt(t, w, 1, 0))
	assert.Equal(t, -3.0, mustAt(t, w, 1, 1))

	bad := newFilled(t, [][]float64{{1, 2, 3}})
	err := matrix.AddScaledInPlace(w, bad, 1.0)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestRowSoftmax_RowsSumToOne(t *testing.T) {
	t.Parallel()

	m := newFilled(t, [][]float64{
		{0, 0, 0},
		{1, 2, 3},
		{-1000, 0, 1000}, // extreme logits must not overflow
	})

	p, err := matrix.RowSoftmax(m)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			v := mustAt(t, p, i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.False(t, math.IsNaN(v))
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d must sum to 1", i)
	}

	// Uniform logits → uniform distribution.
	assert.InDelta(t, 1.0/3.0, mustAt(t, p, 0, 0), 1e-12)
	// Dominant logit takes essentially all the mass.
	assert.InDelta(t, 1.0, mustAt(t, p, 2, 2), 1e-9)
}

func TestRowSoftmax_RejectsNaN(t *testing.T) {
	m := newFilled(t, [][]float64{{1, math.NaN()}})

	_, err := matrix.RowSoftmax(m)
	if !errors.Is(err, matrix.ErrNaNInf) {
		t.Fatalf("want ErrNaNInf, got %v", err)
	}
}

func TestValidateFinite(t *testing.T) {
	ok := newFilled(t, [][]float64{{1, 2}})
	assert.NoError(t, matrix.ValidateFinite(ok))

	bad := newFilled(t, [][]float64{{1, math.Inf(1)}})
	assert.ErrorIs(t, matrix.ValidateFinite(bad), matrix.ErrNaNInf)
	assert.ErrorIs(t, matrix.ValidateFinite(hide{bad}), matrix.ErrNaNInf)
}
