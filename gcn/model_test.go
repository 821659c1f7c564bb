// SPDX-License-Identifier: MIT

package gcn_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/matrix"
)

// testAdj returns a small symmetric normalized-style adjacency.
func testAdj(t *testing.T) *matrix.Dense {
	t.Helper()
	adj, err := matrix.NewDenseFromRows([][]float64{
		{0.5, 0.25, 0.0, 0.25},
		{0.25, 0.5, 0.25, 0.0},
		{0.0, 0.25, 0.5, 0.25},
		{0.25, 0.0, 0.25, 0.5},
	})
	require.NoError(t, err)

	return adj
}

func testFeatures(t *testing.T) *matrix.Dense {
	t.Helper()
	h0, err := matrix.NewDenseFromRows([][]float64{
		{0.9, -0.2, 0.1},
		{-0.3, 0.8, 0.4},
		{0.2, 0.1, -0.7},
		{-0.6, -0.5, 0.3},
	})
	require.NoError(t, err)

	return h0
}

func TestNewModel_DeterministicForSeed(t *testing.T) {
	a, err := gcn.NewModel([]int{3, 4, 2}, 42)
	require.NoError(t, err)
	b, err := gcn.NewModel([]int{3, 4, 2}, 42)
	require.NoError(t, err)

	require.Equal(t, a.Snapshot(nil).Layers, b.Snapshot(nil).Layers)

	c, err := gcn.NewModel([]int{3, 4, 2}, 43)
	require.NoError(t, err)
	require.NotEqual(t, a.Snapshot(nil).Layers, c.Snapshot(nil).Layers)
}

func TestNewModel_BadArchitecture(t *testing.T) {
	_, err := gcn.NewModel([]int{3}, 1)
	require.True(t, errors.Is(err, gcn.ErrBadArchitecture))

	_, err = gcn.NewModel([]int{3, 0, 2}, 1)
	require.True(t, errors.Is(err, gcn.ErrBadArchitecture))
}

func TestForward_ShapeChecks(t *testing.T) {
	m, err := gcn.NewModel([]int{3, 4, 2}, 7)
	require.NoError(t, err)

	adj := testAdj(t)

	wide, err := matrix.NewDense(4, 5)
	require.NoError(t, err)
	_, _, err = m.Forward(adj, wide)
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch))

	short, err := matrix.NewDense(3, 3)
	require.NoError(t, err)
	_, _, err = m.Forward(adj, short)
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch))

	rect, err := matrix.NewDense(4, 3)
	require.NoError(t, err)
	_, _, err = m.Forward(rect, testFeatures(t))
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch)) // non-square adjacency
}

func TestForward_LogitShape(t *testing.T) {
	m, err := gcn.NewModel([]int{3, 4, 2}, 7)
	require.NoError(t, err)

	logits, cache, err := m.Forward(testAdj(t), testFeatures(t))
	require.NoError(t, err)
	require.NotNil(t, cache)
	require.Equal(t, 4, logits.Rows())
	require.Equal(t, 2, logits.Cols())
}

// lossAt rebuilds a model from a (possibly perturbed) snapshot and
// evaluates the subset loss, for finite-difference probing.
func lossAt(
	t *testing.T,
	snap *gcn.Snapshot,
	adj, h0 *matrix.Dense,
	labels, nodes []int,
	weights []float64,
) float64 {
	t.Helper()

	m, err := gcn.FromSnapshot(snap)
	require.NoError(t, err)

	logits, _, err := m.Forward(adj, h0)
	require.NoError(t, err)

	loss, _, err := gcn.WeightedCrossEntropy(logits, labels, nodes, weights)
	require.NoError(t, err)

	return loss
}

func TestBackward_MatchesFiniteDifference(t *testing.T) {
	adj := testAdj(t)
	h0 := testFeatures(t)
	labels := []int{0, 1, 0, 1}
	nodes := []int{0, 1, 2, 3}
	weights := []float64{1.2, 0.8}

	m, err := gcn.NewModel([]int{3, 4, 2}, 42)
	require.NoError(t, err)

	logits, cache, err := m.Forward(adj, h0)
	require.NoError(t, err)

	loss, dLogits, err := gcn.WeightedCrossEntropy(logits, labels, nodes, weights)
	require.NoError(t, err)
	require.False(t, math.IsNaN(loss))

	grads, err := m.Backward(adj, cache, dLogits)
	require.NoError(t, err)
	require.Len(t, grads, 2)

	base := m.Snapshot([]string{"a", "b"})
	const h = 1e-5

	for l := range base.Layers {
		for i := range base.Layers[l].Weights {
			for j := range base.Layers[l].Weights[i] {
				orig := base.Layers[l].Weights[i][j]

				base.Layers[l].Weights[i][j] = orig + h
				up := lossAt(t, base, adj, h0, labels, nodes, weights)
				base.Layers[l].Weights[i][j] = orig - h
				down := lossAt(t, base, adj, h0, labels, nodes, weights)
				base.Layers[l].Weights[i][j] = orig

				numeric := (up - down) / (2 * h)
				analytic, errAt := grads[l].DW.At(i, j)
				require.NoError(t, errAt)
				require.InDelta(t, numeric, analytic, 1e-4,
					"layer %d weight (%d,%d)", l, i, j)
			}
		}

		for j := range base.Layers[l].Bias {
			orig := base.Layers[l].Bias[j]

			base.Layers[l].Bias[j] = orig + h
			up := lossAt(t, base, adj, h0, labels, nodes, weights)
			base.Layers[l].Bias[j] = orig - h
			down := lossAt(t, base, adj, h0, labels, nodes, weights)
			base.Layers[l].Bias[j] = orig

			numeric := (up - down) / (2 * h)
			require.InDelta(t, numeric, grads[l].DB[j], 1e-4,
				"layer %d bias %d", l, j)
		}
	}
}

func TestApplyGradients_ReducesLoss(t *testing.T) {
	adj := testAdj(t)
	h0 := testFeatures(t)
	labels := []int{0, 1, 0, 1}
	nodes := []int{0, 1, 2, 3}

	m, err := gcn.NewModel([]int{3, 4, 2}, 11)
	require.NoError(t, err)

	logits, cache, err := m.Forward(adj, h0)
	require.NoError(t, err)
	before, dLogits, err := gcn.WeightedCrossEntropy(logits, labels, nodes, nil)
	require.NoError(t, err)

	grads, err := m.Backward(adj, cache, dLogits)
	require.NoError(t, err)
	require.NoError(t, m.ApplyGradients(grads, 0.05))

	logits, _, err = m.Forward(adj, h0)
	require.NoError(t, err)
	after, _, err := gcn.WeightedCrossEntropy(logits, labels, nodes, nil)
	require.NoError(t, err)

	require.Less(t, after, before)
}

func TestWeightedCrossEntropy_Errors(t *testing.T) {
	logits, err := matrix.NewDenseFromRows([][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)

	_, _, err = gcn.WeightedCrossEntropy(logits, []int{0, 1}, nil, nil)
	require.True(t, errors.Is(err, gcn.ErrNoTargets))

	_, _, err = gcn.WeightedCrossEntropy(logits, []int{0}, []int{0}, nil)
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch))

	_, _, err = gcn.WeightedCrossEntropy(logits, []int{0, 5}, []int{1}, nil)
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch))

	_, _, err = gcn.WeightedCrossEntropy(logits, []int{0, 1}, []int{0}, []float64{1})
	require.True(t, errors.Is(err, gcn.ErrShapeMismatch))
}

func TestAccuracy(t *testing.T) {
	logits, err := matrix.NewDenseFromRows([][]float64{
		{2, 1}, // pred 0
		{0, 3}, // pred 1
		{1, 4}, // pred 1
	})
	require.NoError(t, err)

	acc, err := gcn.Accuracy(logits, []int{0, 1, 0}, []int{0, 1, 2})
	require.NoError(t, err)
	require.InDelta(t, 2.0/3.0, acc, 1e-12)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	m, err := gcn.NewModel([]int{3, 4, 2}, 99)
	require.NoError(t, err)

	snap := m.Snapshot([]string{"hasName", "hasEmail"})
	require.NotEmpty(t, snap.ID)
	require.Equal(t, gcn.NodeOrderCanonical, snap.NodeOrder)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, snap.Save(path))

	loaded, err := gcn.LoadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, snap.Layers, loaded.Layers)
	require.Equal(t, snap.Vocabulary, loaded.Vocabulary)

	restored, err := gcn.FromSnapshot(loaded)
	require.NoError(t, err)

	a, _, err := m.Forward(testAdj(t), testFeatures(t))
	require.NoError(t, err)
	b, _, err := restored.Forward(testAdj(t), testFeatures(t))
	require.NoError(t, err)
	require.Equal(t, a.ToRows(), b.ToRows())
}

func TestFromSnapshot_Invalid(t *testing.T) {
	m, err := gcn.NewModel([]int{3, 4, 2}, 5)
	require.NoError(t, err)

	snap := m.Snapshot([]string{"a", "b"})
	snap.LayerSizes = []int{3, 4, 3} // vocabulary no longer matches output
	_, err = gcn.FromSnapshot(snap)
	require.True(t, errors.Is(err, gcn.ErrBadSnapshot))

	_, err = gcn.FromSnapshot(nil)
	require.True(t, errors.Is(err, gcn.ErrBadSnapshot))
}
