// SPDX-License-Identifier: MIT

package gcn

import (
	"fmt"
	"math"

	"github.com/ontoforge/schemamap/matrix"
)

// logFloor guards the cross-entropy logarithm against a zero probability.
const logFloor = 1e-8

// WeightedCrossEntropy scores the softmax cross-entropy of the logits
// against integer labels over a subset of node rows, class-weighted.
//
// labels is indexed by node row and must hold a valid class for every
// node listed in nodes (other rows are ignored and may be negative).
// classWeights has one entry per class; nil means uniform weights.
//
// Returns the mean weighted loss over the subset and the full N×C
// gradient dLoss/dLogits, zero on rows outside the subset. Softmax rows
// are stabilized by per-row max subtraction inside the matrix kernel;
// probabilities are floored at 1e-8 before the logarithm.
//
// Errors: ErrNoTargets, ErrShapeMismatch; kernel errors propagate.
func WeightedCrossEntropy(
	logits *matrix.Dense,
	labels []int,
	nodes []int,
	classWeights []float64,
) (float64, *matrix.Dense, error) {
	if len(nodes) == 0 {
		return 0, nil, ErrNoTargets
	}
	n, c := logits.Rows(), logits.Cols()
	if len(labels) != n {
		return 0, nil, fmt.Errorf("%w: %d labels for %d logit rows",
			ErrShapeMismatch, len(labels), n)
	}
	if classWeights != nil && len(classWeights) != c {
		return 0, nil, fmt.Errorf("%w: %d class weights for %d classes",
			ErrShapeMismatch, len(classWeights), c)
	}

	probs, err := matrix.RowSoftmax(logits)
	if err != nil {
		return 0, nil, err
	}

	grad, err := matrix.NewDense(n, c)
	if err != nil {
		return 0, nil, err
	}

	inv := 1.0 / float64(len(nodes))
	loss := 0.0
	for _, i := range nodes {
		if i < 0 || i >= n {
			return 0, nil, fmt.Errorf("%w: node index %d outside %d rows",
				ErrShapeMismatch, i, n)
		}
		y := labels[i]
		if y < 0 || y >= c {
			return 0, nil, fmt.Errorf("%w: label %d for node %d outside %d classes",
				ErrShapeMismatch, y, i, c)
		}

		w := 1.0
		if classWeights != nil {
			w = classWeights[y]
		}

		p, _ := probs.At(i, y)
		loss += -w * math.Log(math.Max(p, logFloor)) * inv

		for j := 0; j < c; j++ {
			pj, _ := probs.At(i, j)
			target := 0.0
			if j == y {
				target = 1.0
			}
			cur, _ := grad.At(i, j)
			_ = grad.Set(i, j, cur+w*(pj-target)*inv)
		}
	}

	return loss, grad, nil
}

// Accuracy returns the share of subset nodes whose argmax logit matches
// the label. Argmax ties resolve to the lowest class index.
//
// Errors: ErrNoTargets, ErrShapeMismatch.
func Accuracy(logits *matrix.Dense, labels []int, nodes []int) (float64, error) {
	if len(nodes) == 0 {
		return 0, ErrNoTargets
	}
	n := logits.Rows()
	if len(labels) != n {
		return 0, fmt.Errorf("%w: %d labels for %d logit rows",
			ErrShapeMismatch, len(labels), n)
	}

	hits := 0
	for _, i := range nodes {
		if i < 0 || i >= n {
			return 0, fmt.Errorf("%w: node index %d outside %d rows",
				ErrShapeMismatch, i, n)
		}
		if Argmax(logits, i) == labels[i] {
			hits++
		}
	}

	return float64(hits) / float64(len(nodes)), nil
}

// Argmax returns the column of the largest entry in row i, lowest index
// winning ties.
func Argmax(logits *matrix.Dense, i int) int {
	best, bestV := 0, math.Inf(-1)
	for j := 0; j < logits.Cols(); j++ {
		v, _ := logits.At(i, j)
		if v > bestV {
			best, bestV = j, v
		}
	}

	return best
}
