// SPDX-License-Identifier: MIT

package train

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
)

// EpochStats is one row of the training curve.
type EpochStats struct {
	Epoch         int     `json:"epoch"`
	TrainLoss     float64 `json:"train_loss"`
	ValLoss       float64 `json:"val_loss"`
	TrainAccuracy float64 `json:"train_accuracy"`
	LearningRate  float64 `json:"learning_rate"`
}

// Result carries the winning parameters and the full per-epoch curve.
type Result struct {
	// Snapshot holds the parameters of the best validation-loss epoch.
	Snapshot *gcn.Snapshot

	Curve        []EpochStats
	BestEpoch    int
	BestValLoss  float64
	StoppedEarly bool

	// TrainNodes and ValNodes record the split actually used, so an
	// evaluation run can score held-out nodes only.
	TrainNodes []int
	ValNodes   []int
}

// Train fits a fresh model to the graph's labeled subset.
//
// Implementation: Stage 1 derives integer labels from ground truth
// through the vocabulary. Stage 2 splits labeled nodes into train and
// validation subsets with the seeded shuffle. Stage 3 computes inverse-
// frequency class weights over the training subset. Stage 4 iterates
// full-batch epochs with early stopping on the best validation loss.
//
// Errors: ErrBadConfig, ErrNoLabeledNodes, ErrUnknownLabel,
// ErrTrainingDiverged; graph and model shape errors propagate.
func Train(g *schemagraph.Graph, vocab *schema.Vocabulary, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	labels, labeled, err := deriveLabels(g, vocab)
	if err != nil {
		return nil, err
	}

	trainNodes, valNodes := split(labeled, cfg.ValRatio, cfg.Seed)
	weights := classWeights(labels, trainNodes, vocab.Size())

	dims := append([]int{g.Features.Cols()}, cfg.Hidden...)
	dims = append(dims, vocab.Size())
	model, err := gcn.NewModel(dims, cfg.Seed)
	if err != nil {
		return nil, err
	}

	res := &Result{
		BestEpoch:   0,
		BestValLoss: math.Inf(1),
		TrainNodes:  trainNodes,
		ValNodes:    valNodes,
	}

	lr := cfg.LearningRate
	sinceBest := 0
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		logits, cache, err := model.Forward(g.Adj, g.Features)
		if err != nil {
			return nil, err
		}

		trainLoss, dLogits, err := gcn.WeightedCrossEntropy(logits, labels, trainNodes, weights)
		if err != nil {
			// non-finite logits are the same failure as a non-finite loss
			if errors.Is(err, matrix.ErrNaNInf) {
				return nil, divergence(epoch, lr, math.NaN())
			}
			return nil, err
		}
		if !isFinite(trainLoss) {
			return nil, divergence(epoch, lr, trainLoss)
		}

		grads, err := model.Backward(g.Adj, cache, dLogits)
		if err != nil {
			return nil, err
		}
		if err := model.ApplyGradients(grads, lr); err != nil {
			return nil, err
		}

		// score the updated parameters; the snapshot that may win below
		// must be the one validation actually measured
		logits, _, err = model.Forward(g.Adj, g.Features)
		if err != nil {
			return nil, err
		}
		valLoss, _, err := gcn.WeightedCrossEntropy(logits, labels, valNodes, weights)
		if err != nil {
			if errors.Is(err, matrix.ErrNaNInf) {
				return nil, divergence(epoch, lr, math.NaN())
			}
			return nil, err
		}
		if !isFinite(valLoss) {
			return nil, divergence(epoch, lr, valLoss)
		}
		trainAcc, err := gcn.Accuracy(logits, labels, trainNodes)
		if err != nil {
			return nil, err
		}

		res.Curve = append(res.Curve, EpochStats{
			Epoch:         epoch,
			TrainLoss:     trainLoss,
			ValLoss:       valLoss,
			TrainAccuracy: trainAcc,
			LearningRate:  lr,
		})

		if valLoss < res.BestValLoss {
			res.BestValLoss = valLoss
			res.BestEpoch = epoch
			res.Snapshot = model.Snapshot(vocab.Names())
			sinceBest = 0
		} else {
			sinceBest++
			if sinceBest >= cfg.Patience {
				res.StoppedEarly = true
				break
			}
		}

		lr *= cfg.LRDecay
	}

	return res, nil
}

// deriveLabels maps ground-truth properties onto class indices. labels
// is indexed by node with -1 for unlabeled nodes; labeled lists the
// labeled node indices in canonical order.
func deriveLabels(g *schemagraph.Graph, vocab *schema.Vocabulary) ([]int, []int, error) {
	labels := make([]int, g.NodeCount())
	var labeled []int
	for i, n := range g.Nodes {
		labels[i] = -1
		if !n.Field.Labeled() {
			continue
		}
		cls, err := vocab.IndexOf(n.Field.GroundTruthProperty)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q on field %s",
				ErrUnknownLabel, n.Field.GroundTruthProperty, n.Field.Key())
		}
		labels[i] = cls
		labeled = append(labeled, i)
	}
	if len(labeled) == 0 {
		return nil, nil, ErrNoLabeledNodes
	}

	return labels, labeled, nil
}

// split shuffles the labeled indices with the seed and carves off the
// validation share. Too few nodes to hold any out means validating on
// the training subset itself.
func split(labeled []int, valRatio float64, seed int64) (trainNodes, valNodes []int) {
	shuffled := append([]int(nil), labeled...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nVal := int(float64(len(shuffled)) * valRatio)
	if nVal == 0 || nVal == len(shuffled) {
		return shuffled, shuffled
	}

	return shuffled[nVal:], shuffled[:nVal]
}

// classWeights computes inverse-frequency weights over the training
// subset, normalized so the weights sum to the class count C. Absent
// classes weigh zero.
func classWeights(labels []int, nodes []int, classes int) []float64 {
	freq := make([]int, classes)
	for _, i := range nodes {
		freq[labels[i]]++
	}

	w := make([]float64, classes)
	sum := 0.0
	for c, f := range freq {
		if f == 0 {
			continue
		}
		w[c] = 1.0 / float64(f)
		sum += w[c]
	}
	if sum == 0 {
		return w
	}
	scale := float64(classes) / sum
	for c := range w {
		w[c] *= scale
	}

	return w
}

func divergence(epoch int, lr, loss float64) error {
	return fmt.Errorf("%w: non-finite loss %v at epoch %d with learning rate %g",
		ErrTrainingDiverged, loss, epoch, lr)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
