// SPDX-License-Identifier: MIT

package infer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
)

var (
	// ErrBadK is returned for a non-positive top-k rank.
	ErrBadK = errors.New("infer: top-k rank must be positive")

	// ErrNodeOrderMismatch is returned when a snapshot was produced
	// under a different node-index convention than this engine uses.
	ErrNodeOrderMismatch = errors.New("infer: snapshot node order mismatch")
)

// Engine wraps a frozen model snapshot for repeated inference.
type Engine struct {
	model *gcn.Model
	vocab []string
	opts  schemagraph.Options
}

// NewEngine validates the snapshot and prepares it for prediction.
// Graph construction uses the given options; DefaultOptions matches
// training-time construction.
//
// Errors: gcn.ErrBadSnapshot, ErrNodeOrderMismatch.
func NewEngine(snap *gcn.Snapshot, opts schemagraph.Options) (*Engine, error) {
	model, err := gcn.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if snap.NodeOrder != gcn.NodeOrderCanonical {
		return nil, fmt.Errorf("%w: %q", ErrNodeOrderMismatch, snap.NodeOrder)
	}

	return &Engine{
		model: model,
		vocab: append([]string(nil), snap.Vocabulary...),
		opts:  opts,
	}, nil
}

// Vocabulary returns the property ordering the engine predicts over.
func (e *Engine) Vocabulary() []string {
	return append([]string(nil), e.vocab...)
}

// Predict runs the full pipeline on a (possibly unseen) schema snapshot
// and returns one ranked prediction per field, in canonical field order.
// k bounds the candidate list per field and is clamped to the class
// count.
//
// Errors: ErrBadK; graph construction and shape errors propagate, in
// particular gcn.ErrShapeMismatch when the fields encode to a different
// feature width than the snapshot was trained on.
func (e *Engine) Predict(
	fields []schema.FieldDescriptor,
	rels []schema.RelationshipPair,
	k int,
) ([]schema.Prediction, error) {
	if k <= 0 {
		return nil, ErrBadK
	}
	if k > len(e.vocab) {
		k = len(e.vocab)
	}

	g, err := schemagraph.Build(fields, rels, e.opts)
	if err != nil {
		return nil, err
	}

	logits, _, err := e.model.Forward(g.Adj, g.Features)
	if err != nil {
		return nil, err
	}
	probs, err := matrix.RowSoftmax(logits)
	if err != nil {
		return nil, err
	}

	preds := make([]schema.Prediction, g.NodeCount())
	for i, n := range g.Nodes {
		preds[i] = schema.Prediction{
			TableName: n.Field.TableName,
			FieldName: n.Field.FieldName,
			TopK:      e.rank(probs, i, k),
		}
	}

	return preds, nil
}

// rank sorts the full distribution of row i by descending confidence,
// ties broken by lexicographic property order, and truncates to k.
func (e *Engine) rank(probs *matrix.Dense, i, k int) []schema.Candidate {
	all := make([]schema.Candidate, len(e.vocab))
	for j, name := range e.vocab {
		p, _ := probs.At(i, j)
		all[j] = schema.Candidate{Property: name, Confidence: p}
	}

	sort.SliceStable(all, func(a, b int) bool {
		if all[a].Confidence != all[b].Confidence {
			return all[a].Confidence > all[b].Confidence
		}
		return all[a].Property < all[b].Property
	})

	return all[:k]
}
