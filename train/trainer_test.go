// SPDX-License-Identifier: MIT

package train_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
	"github.com/ontoforge/schemamap/train"
)

var testProps = []string{"hasA", "hasB", "hasC"}

// syntheticGraph builds a hand-wired graph whose features are the one-hot
// class encoding itself and whose adjacency is the identity, so the
// classes are perfectly separable.
func syntheticGraph(t *testing.T, classes []int) *schemagraph.Graph {
	t.Helper()

	n := len(classes)
	rows := make([][]float64, n)
	nodes := make([]schemagraph.Node, n)
	for i, c := range classes {
		row := make([]float64, len(testProps))
		row[c] = 1
		rows[i] = row
		nodes[i] = schemagraph.Node{
			Index: i,
			Field: schema.FieldDescriptor{
				TableName:           "t",
				FieldName:           fmt.Sprintf("f%02d", i),
				RawDatatype:         "int",
				GroundTruthProperty: testProps[c],
			},
			Features: row,
		}
	}

	feats, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)
	adj, err := matrix.Identity(n)
	require.NoError(t, err)

	return &schemagraph.Graph{Nodes: nodes, Features: feats, Adj: adj}
}

func testVocab(t *testing.T) *schema.Vocabulary {
	t.Helper()
	v, err := schema.NewVocabularyFromNames(testProps)
	require.NoError(t, err)

	return v
}

func TestTrain_SeparableGraphReachesFullTrainAccuracy(t *testing.T) {
	g := syntheticGraph(t, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2})

	cfg := train.Config{
		Epochs:       300,
		LearningRate: 0.5,
		LRDecay:      1.0,
		Patience:     300,
		ValRatio:     0,
		Seed:         42,
	}

	res, err := train.Train(g, testVocab(t), cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)

	model, err := gcn.FromSnapshot(res.Snapshot)
	require.NoError(t, err)
	logits, _, err := model.Forward(g.Adj, g.Features)
	require.NoError(t, err)

	labels := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2}
	acc, err := gcn.Accuracy(logits, labels, res.TrainNodes)
	require.NoError(t, err)
	require.Equal(t, 1.0, acc)
}

func TestTrain_LossNonIncreasingWithSmallRate(t *testing.T) {
	g := syntheticGraph(t, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2})

	cfg := train.Config{
		Epochs:       50,
		LearningRate: 0.01,
		LRDecay:      1.0,
		Patience:     50,
		ValRatio:     0,
		Seed:         1,
	}

	res, err := train.Train(g, testVocab(t), cfg)
	require.NoError(t, err)
	require.NotEmpty(t, res.Curve)

	for i := 1; i < len(res.Curve); i++ {
		require.LessOrEqual(t, res.Curve[i].TrainLoss, res.Curve[i-1].TrainLoss+1e-12,
			"epoch %d", res.Curve[i].Epoch)
	}
}

func TestTrain_BestSnapshotTracksValidationLoss(t *testing.T) {
	g := syntheticGraph(t, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2})

	cfg := train.DefaultConfig()
	cfg.Hidden = nil
	cfg.Epochs = 80
	cfg.ValRatio = 0.3

	res, err := train.Train(g, testVocab(t), cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)
	require.Greater(t, res.BestEpoch, 0)
	require.False(t, math.IsInf(res.BestValLoss, 1))

	// the recorded best is the minimum of the validation curve
	for _, e := range res.Curve {
		require.GreaterOrEqual(t, e.ValLoss, res.BestValLoss-1e-12)
	}

	require.NotEmpty(t, res.TrainNodes)
	require.NotEmpty(t, res.ValNodes)
	require.Len(t, res.TrainNodes, 7)
	require.Len(t, res.ValNodes, 3)
}

func TestTrain_DivergenceIsFatal(t *testing.T) {
	g := syntheticGraph(t, []int{0, 1, 2})
	require.NoError(t, g.Features.Set(0, 0, math.NaN()))

	cfg := train.DefaultConfig()
	cfg.Hidden = nil

	_, err := train.Train(g, testVocab(t), cfg)
	require.True(t, errors.Is(err, train.ErrTrainingDiverged))
	require.Contains(t, err.Error(), "epoch 1")
	require.Contains(t, err.Error(), "learning rate")
}

func TestTrain_NoLabeledNodes(t *testing.T) {
	g := syntheticGraph(t, []int{0, 1})
	for i := range g.Nodes {
		g.Nodes[i].Field.GroundTruthProperty = ""
	}

	_, err := train.Train(g, testVocab(t), train.DefaultConfig())
	require.True(t, errors.Is(err, train.ErrNoLabeledNodes))
}

func TestTrain_UnknownLabel(t *testing.T) {
	g := syntheticGraph(t, []int{0, 1})
	g.Nodes[1].Field.GroundTruthProperty = "hasTypo"

	_, err := train.Train(g, testVocab(t), train.DefaultConfig())
	require.True(t, errors.Is(err, train.ErrUnknownLabel))
	require.Contains(t, err.Error(), "hasTypo")
}

func TestTrain_BadConfig(t *testing.T) {
	g := syntheticGraph(t, []int{0, 1, 2})

	cfg := train.DefaultConfig()
	cfg.Epochs = 0
	_, err := train.Train(g, testVocab(t), cfg)
	require.True(t, errors.Is(err, train.ErrBadConfig))

	cfg = train.DefaultConfig()
	cfg.ValRatio = 1.0
	_, err = train.Train(g, testVocab(t), cfg)
	require.True(t, errors.Is(err, train.ErrBadConfig))
}

func TestTrain_FewLabeledThanClassesStillTrains(t *testing.T) {
	// two labeled nodes, three classes: recoverable, not fatal
	g := syntheticGraph(t, []int{0, 1})

	cfg := train.DefaultConfig()
	cfg.Hidden = nil
	cfg.Epochs = 20

	res, err := train.Train(g, testVocab(t), cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)
}
