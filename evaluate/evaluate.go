// SPDX-License-Identifier: MIT

package evaluate

import (
	"fmt"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
)

// ClassMetrics is the per-class scorecard. Support counts ground-truth
// occurrences in the evaluated subset.
type ClassMetrics struct {
	Property  string  `json:"property"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Metrics is the full evaluation report.
type Metrics struct {
	Accuracy     float64 `json:"accuracy"`
	TopKAccuracy float64 `json:"top_k_accuracy"`
	K            int     `json:"k"`

	PerClass []ClassMetrics `json:"per_class"`

	MacroPrecision    float64 `json:"macro_precision"`
	MacroRecall       float64 `json:"macro_recall"`
	MacroF1           float64 `json:"macro_f1"`
	WeightedPrecision float64 `json:"weighted_precision"`
	WeightedRecall    float64 `json:"weighted_recall"`
	WeightedF1        float64 `json:"weighted_f1"`

	// Confusion is C×C with rows as ground truth and columns as
	// prediction. The cell sum equals Evaluated.
	Confusion [][]int `json:"confusion"`

	// Evaluated counts the nodes actually scored; CoverageGaps counts
	// requested nodes that carried no ground truth and were excluded.
	Evaluated          int      `json:"evaluated"`
	CoverageGaps       int      `json:"coverage_gaps"`
	ZeroSupportClasses []string `json:"zero_support_classes,omitempty"`
}

// Evaluate scores the model over the graph's labeled nodes. nodes selects
// the subset to score; nil means every labeled node. Requested nodes
// without ground truth are excluded from the metrics and counted in
// CoverageGaps rather than failing the run. k is the top-k rank for
// TopKAccuracy and is clamped to the class count.
//
// Errors: ErrBadK, ErrBadNodeIndex, ErrNoEvalNodes (nothing scorable),
// ErrUnknownLabel; model shape errors propagate.
func Evaluate(
	model *gcn.Model,
	g *schemagraph.Graph,
	nodes []int,
	vocab *schema.Vocabulary,
	k int,
) (*Metrics, error) {
	if k <= 0 {
		return nil, ErrBadK
	}
	c := vocab.Size()
	if k > c {
		k = c
	}

	labels, err := deriveLabels(g, vocab)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		for i, y := range labels {
			if y >= 0 {
				nodes = append(nodes, i)
			}
		}
	}
	if len(nodes) == 0 {
		return nil, ErrNoEvalNodes
	}

	logits, _, err := model.Forward(g.Adj, g.Features)
	if err != nil {
		return nil, err
	}

	confusion := make([][]int, c)
	for i := range confusion {
		confusion[i] = make([]int, c)
	}

	hits, topKHits, scored, gaps := 0, 0, 0, 0
	for _, i := range nodes {
		if i < 0 || i >= len(labels) {
			return nil, fmt.Errorf("%w: node %d", ErrBadNodeIndex, i)
		}
		if labels[i] < 0 {
			// missing ground truth is a coverage gap, not a failure
			gaps++
			continue
		}
		truth := labels[i]
		pred := gcn.Argmax(logits, i)
		confusion[truth][pred]++
		scored++
		if pred == truth {
			hits++
		}
		if inTopK(logits, i, truth, k) {
			topKHits++
		}
	}
	if scored == 0 {
		return nil, ErrNoEvalNodes
	}

	m := &Metrics{
		K:            k,
		Confusion:    confusion,
		Evaluated:    scored,
		CoverageGaps: gaps,
		Accuracy:     float64(hits) / float64(scored),
	}
	m.TopKAccuracy = float64(topKHits) / float64(scored)

	fillClassMetrics(m, vocab, confusion)

	return m, nil
}

// fillClassMetrics derives per-class and aggregate scores from the
// confusion matrix. Zero-denominator precision/recall is 0 by convention.
func fillClassMetrics(m *Metrics, vocab *schema.Vocabulary, confusion [][]int) {
	c := vocab.Size()
	m.PerClass = make([]ClassMetrics, c)

	totalSupport := 0
	for cls := 0; cls < c; cls++ {
		tp := confusion[cls][cls]
		support, predicted := 0, 0
		for j := 0; j < c; j++ {
			support += confusion[cls][j]
			predicted += confusion[j][cls]
		}

		cm := ClassMetrics{Property: vocab.Name(cls), Support: support}
		if predicted > 0 {
			cm.Precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			cm.Recall = float64(tp) / float64(support)
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		m.PerClass[cls] = cm

		if support == 0 {
			m.ZeroSupportClasses = append(m.ZeroSupportClasses, cm.Property)
		}
		totalSupport += support

		m.MacroPrecision += cm.Precision / float64(c)
		m.MacroRecall += cm.Recall / float64(c)
		m.MacroF1 += cm.F1 / float64(c)
	}

	for _, cm := range m.PerClass {
		w := float64(cm.Support) / float64(totalSupport)
		m.WeightedPrecision += w * cm.Precision
		m.WeightedRecall += w * cm.Recall
		m.WeightedF1 += w * cm.F1
	}
}

// inTopK reports whether class truth ranks among the k largest logits of
// row i, ranking ties by ascending class index. A single counting pass
// suffices: truth's rank is the number of classes placed ahead of it.
func inTopK(logits *matrix.Dense, i, truth, k int) bool {
	vt, _ := logits.At(i, truth)

	rank := 0
	for j := 0; j < logits.Cols(); j++ {
		if j == truth {
			continue
		}
		v, _ := logits.At(i, j)
		if v > vt || (v == vt && j < truth) {
			rank++
		}
	}

	return rank < k
}

// deriveLabels maps ground truth to class indices, -1 for unlabeled.
func deriveLabels(g *schemagraph.Graph, vocab *schema.Vocabulary) ([]int, error) {
	labels := make([]int, g.NodeCount())
	for i, n := range g.Nodes {
		labels[i] = -1
		if !n.Field.Labeled() {
			continue
		}
		cls, err := vocab.IndexOf(n.Field.GroundTruthProperty)
		if err != nil {
			return nil, fmt.Errorf("%w: %q on field %s",
				ErrUnknownLabel, n.Field.GroundTruthProperty, n.Field.Key())
		}
		labels[i] = cls
	}

	return labels, nil
}
