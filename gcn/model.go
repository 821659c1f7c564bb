// SPDX-License-Identifier: MIT

package gcn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ontoforge/schemamap/matrix"
)

// Layer holds the parameters of one graph convolution: a fanIn×fanOut
// weight matrix and a fanOut bias vector.
type Layer struct {
	W *matrix.Dense
	B []float64
}

// Model is an ordered layer stack. dims[0] is the expected feature width
// D, dims[len-1] the class count C; everything between is hidden widths.
// Parameters are mutated only through ApplyGradients.
type Model struct {
	dims   []int
	layers []Layer
}

// Gradient is the parameter gradient of one layer, shaped exactly like
// the layer it belongs to.
type Gradient struct {
	DW *matrix.Dense
	DB []float64
}

// Cache is the explicit replay tape recorded by Forward. For layer l it
// keeps the aggregated input Â·H^(l) (needed for dW) and the
// pre-activation Z^(l) (needed for the ReLU derivative).
type Cache struct {
	aggs    []*matrix.Dense
	preActs []*matrix.Dense
}

// NewModel initializes a model for the given layer widths with an
// explicit seed. Weights follow the variance-scaled uniform rule
// ±√(6/(fanIn+fanOut)); biases start at zero. Identical (dims, seed)
// pairs always produce identical parameters.
//
// Errors: ErrBadArchitecture.
func NewModel(dims []int, seed int64) (*Model, error) {
	if len(dims) < 2 {
		return nil, fmt.Errorf("%w: need at least input and output widths, got %d",
			ErrBadArchitecture, len(dims))
	}
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: non-positive layer width %d",
				ErrBadArchitecture, d)
		}
	}

	rng := rand.New(rand.NewSource(seed))

	m := &Model{
		dims:   append([]int(nil), dims...),
		layers: make([]Layer, len(dims)-1),
	}
	for l := 0; l < len(dims)-1; l++ {
		fanIn, fanOut := dims[l], dims[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

		rows := make([][]float64, fanIn)
		for i := 0; i < fanIn; i++ {
			row := make([]float64, fanOut)
			for j := 0; j < fanOut; j++ {
				row[j] = (rng.Float64()*2 - 1) * limit
			}
			rows[i] = row
		}
		w, err := matrix.NewDenseFromRows(rows)
		if err != nil {
			return nil, err
		}
		m.layers[l] = Layer{W: w, B: make([]float64, fanOut)}
	}

	return m, nil
}

// InputDim returns the expected feature width D.
func (m *Model) InputDim() int { return m.dims[0] }

// OutputDim returns the class count C.
func (m *Model) OutputDim() int { return m.dims[len(m.dims)-1] }

// Dims returns a copy of the layer width list.
func (m *Model) Dims() []int { return append([]int(nil), m.dims...) }

// LayerCount returns the number of parameterized layers L.
func (m *Model) LayerCount() int { return len(m.layers) }

// Forward propagates the feature matrix through the stack:
// H^(l+1) = ReLU(Â·H^(l)·W^(l) + b^(l)) on all layers but the last, which
// emits raw N×C logits without a nonlinearity.
//
// The returned Cache holds every intermediate Backward needs; callers
// doing pure inference may discard it.
//
// Errors: ErrShapeMismatch when adj is not square N×N or h0 is not
// N×InputDim; matrix kernel errors propagate wrapped.
func (m *Model) Forward(adj, h0 *matrix.Dense) (*matrix.Dense, *Cache, error) {
	if err := m.checkShapes(adj, h0); err != nil {
		return nil, nil, err
	}

	cache := &Cache{
		aggs:    make([]*matrix.Dense, len(m.layers)),
		preActs: make([]*matrix.Dense, len(m.layers)),
	}

	h := h0
	for l, layer := range m.layers {
		agg, err := matrix.Mul(adj, h)
		if err != nil {
			return nil, nil, fmt.Errorf("gcn: forward layer %d aggregate: %w", l, err)
		}

		lin, err := matrix.Mul(agg, layer.W)
		if err != nil {
			return nil, nil, fmt.Errorf("gcn: forward layer %d transform: %w", l, err)
		}
		z, err := matrix.AddRowBroadcast(lin, layer.B)
		if err != nil {
			return nil, nil, fmt.Errorf("gcn: forward layer %d bias: %w", l, err)
		}

		cache.aggs[l] = agg
		cache.preActs[l] = z

		if l == len(m.layers)-1 {
			return z, cache, nil
		}
		h = z.Apply(relu)
	}

	// unreachable: NewModel guarantees at least one layer
	return nil, nil, ErrBadArchitecture
}

// Backward consumes the forward tape and the loss gradient with respect
// to the logits, and returns parameter gradients for every layer, in
// layer order. Parameters are not touched; applying the update is the
// caller's decision.
//
// For layer l with dZ the gradient at its pre-activation:
//
//	dW^(l) = (Â·H^(l))ᵀ · dZ
//	db^(l) = column sums of dZ
//	dH^(l) = Â · (dZ · W^(l)ᵀ)      (Â symmetric, so Âᵀ = Â)
//
// and the step into layer l-1 masks dH by the ReLU derivative at the
// cached pre-activation.
func (m *Model) Backward(adj *matrix.Dense, cache *Cache, dLogits *matrix.Dense) ([]Gradient, error) {
	if cache == nil || len(cache.aggs) != len(m.layers) {
		return nil, fmt.Errorf("%w: cache does not match model depth", ErrShapeMismatch)
	}

	grads := make([]Gradient, len(m.layers))

	dZ := dLogits
	for l := len(m.layers) - 1; l >= 0; l-- {
		dW, err := matrix.MulAT(cache.aggs[l], dZ)
		if err != nil {
			return nil, fmt.Errorf("gcn: backward layer %d weights: %w", l, err)
		}
		dB, err := matrix.ColSums(dZ)
		if err != nil {
			return nil, fmt.Errorf("gcn: backward layer %d bias: %w", l, err)
		}
		grads[l] = Gradient{DW: dW, DB: dB}

		if l == 0 {
			break
		}

		dAgg, err := matrix.MulBT(dZ, m.layers[l].W)
		if err != nil {
			return nil, fmt.Errorf("gcn: backward layer %d input: %w", l, err)
		}
		dH, err := matrix.Mul(adj, dAgg)
		if err != nil {
			return nil, fmt.Errorf("gcn: backward layer %d aggregate: %w", l, err)
		}

		mask := cache.preActs[l-1].Apply(reluDeriv)
		dZ, err = matrix.Hadamard(dH, mask)
		if err != nil {
			return nil, fmt.Errorf("gcn: backward layer %d mask: %w", l, err)
		}
	}

	return grads, nil
}

// ApplyGradients performs one in-place gradient-descent step,
// p ← p − lr·∇p, across every layer.
//
// Errors: ErrShapeMismatch when the gradient list does not match the
// model's layers.
func (m *Model) ApplyGradients(grads []Gradient, lr float64) error {
	if len(grads) != len(m.layers) {
		return fmt.Errorf("%w: %d gradients for %d layers",
			ErrShapeMismatch, len(grads), len(m.layers))
	}

	for l := range m.layers {
		if err := matrix.AddScaledInPlace(m.layers[l].W, grads[l].DW, -lr); err != nil {
			return fmt.Errorf("gcn: update layer %d weights: %w", l, err)
		}
		if len(grads[l].DB) != len(m.layers[l].B) {
			return fmt.Errorf("%w: bias gradient length %d for layer %d width %d",
				ErrShapeMismatch, len(grads[l].DB), l, len(m.layers[l].B))
		}
		for j, g := range grads[l].DB {
			m.layers[l].B[j] -= lr * g
		}
	}

	return nil
}

// checkShapes verifies adj is square N×N and h0 is N×InputDim.
func (m *Model) checkShapes(adj, h0 *matrix.Dense) error {
	if adj == nil || h0 == nil {
		return fmt.Errorf("%w: nil input matrix", ErrShapeMismatch)
	}
	if adj.Rows() != adj.Cols() {
		return fmt.Errorf("%w: adjacency %dx%d is not square",
			ErrShapeMismatch, adj.Rows(), adj.Cols())
	}
	if adj.Rows() != h0.Rows() {
		return fmt.Errorf("%w: adjacency has %d nodes, features have %d rows",
			ErrShapeMismatch, adj.Rows(), h0.Rows())
	}
	if h0.Cols() != m.InputDim() {
		return fmt.Errorf("%w: feature width %d, model expects %d",
			ErrShapeMismatch, h0.Cols(), m.InputDim())
	}

	return nil
}

func relu(v float64) float64 {
	if v > 0 {
		return v
	}

	return 0
}

func reluDeriv(v float64) float64 {
	if v > 0 {
		return 1
	}

	return 0
}
