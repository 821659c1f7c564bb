// SPDX-License-Identifier: MIT

package schemagraph

import (
	"math"
	"sort"

	"github.com/ontoforge/schemamap/encode"
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
)

// epsDegree guards the normalization denominator for a zero-degree node.
// Self-loops make true zero degrees impossible in practice, but the guard
// keeps the kernel total.
const epsDegree = 1e-12

// pairKey identifies an undirected node pair with A < B.
type pairKey struct{ a, b int }

// pending accumulates rule contributions for one pair before merging.
type pending struct {
	weight    float64
	sameTable bool
	foreign   bool
	similar   bool
}

// Build constructs the graph snapshot for a schema.
//
// Implementation: Stage 1 orders fields canonically and encodes features.
// Stage 2 generates candidate edges from the three rules, summing weights
// per pair. Stage 3 materializes the merged, (A,B)-sorted edge list.
// Stage 4 assembles the raw adjacency with self-loops and applies
// symmetric degree normalization.
//
// Relationship pairs whose endpoints are not part of the field set are
// skipped silently: declared metadata may legitimately mention tables
// outside the current snapshot.
//
// Errors: ErrNoFields, ErrBadOptions.
//
// Complexity: O(N² · T) where T bounds the field-name token count.
func Build(
	fields []schema.FieldDescriptor,
	rels []schema.RelationshipPair,
	opts Options,
) (*Graph, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	ordered := schema.CanonicalOrder(fields)
	rows := encode.EncodeAll(ordered)

	nodes := make([]Node, len(ordered))
	indexOf := make(map[string]int, len(ordered))
	for i, fd := range ordered {
		nodes[i] = Node{Index: i, Field: fd, Features: rows[i]}
		indexOf[fd.Key()] = i
	}

	pendings := collectEdges(nodes, rels, indexOf, opts)
	edges := mergeEdges(pendings)

	features, err := matrix.NewDenseFromRows(rows)
	if err != nil {
		return nil, err
	}

	adj, err := normalizeAdjacency(len(nodes), edges, opts.SelfLoopWeight)
	if err != nil {
		return nil, err
	}

	return &Graph{
		Nodes:    nodes,
		Edges:    edges,
		Features: features,
		Adj:      adj,
	}, nil
}

// collectEdges runs the three rules and accumulates per-pair weights.
func collectEdges(
	nodes []Node,
	rels []schema.RelationshipPair,
	indexOf map[string]int,
	opts Options,
) map[pairKey]*pending {
	acc := make(map[pairKey]*pending)

	add := func(i, j int, w float64, mark func(*pending)) {
		if i == j || w == 0 {
			return
		}
		if i > j {
			i, j = j, i
		}
		k := pairKey{i, j}
		p := acc[k]
		if p == nil {
			p = &pending{}
			acc[k] = p
		}
		p.weight += w
		mark(p)
	}

	// same_table: every pair of fields sharing a table.
	if opts.SameTableWeight > 0 {
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				if nodes[i].Field.TableName != nodes[j].Field.TableName {
					// canonical order keeps tables contiguous
					break
				}
				add(i, j, opts.SameTableWeight, func(p *pending) { p.sameTable = true })
			}
		}
	}

	// foreign_key: declared relationship pairs, consumed verbatim.
	if opts.ForeignKeyWeight > 0 {
		for _, r := range rels {
			i, okA := indexOf[r.A.Key()]
			j, okB := indexOf[r.B.Key()]
			if !okA || !okB {
				continue
			}
			add(i, j, opts.ForeignKeyWeight, func(p *pending) { p.foreign = true })
		}
	}

	// similar_name: Dice token overlap above the threshold.
	if opts.SimilarNameWeight > 0 {
		tokens := make([][]string, len(nodes))
		for i := range nodes {
			tokens[i] = nameTokens(nodes[i].Field.FieldName)
		}
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				if diceSimilarity(tokens[i], tokens[j]) >= opts.SimilarityThreshold {
					add(i, j, opts.SimilarNameWeight, func(p *pending) { p.similar = true })
				}
			}
		}
	}

	return acc
}

// mergeEdges flattens the accumulator into an (A,B)-sorted edge list with
// contributing rule types in fixed rule order.
func mergeEdges(acc map[pairKey]*pending) []Edge {
	edges := make([]Edge, 0, len(acc))
	for k, p := range acc {
		var types []EdgeType
		if p.sameTable {
			types = append(types, EdgeSameTable)
		}
		if p.foreign {
			types = append(types, EdgeForeignKey)
		}
		if p.similar {
			types = append(types, EdgeSimilarName)
		}
		edges = append(edges, Edge{A: k.a, B: k.b, Types: types, Weight: p.weight})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})

	return edges
}

// normalizeAdjacency builds Â = D^(-1/2)(A+I·selfLoop)D^(-1/2) from the
// merged edge list.
func normalizeAdjacency(n int, edges []Edge, selfLoop float64) (*matrix.Dense, error) {
	raw, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		_ = raw.Set(e.A, e.B, e.Weight)
		_ = raw.Set(e.B, e.A, e.Weight)
	}
	for i := 0; i < n; i++ {
		_ = raw.Set(i, i, selfLoop)
	}

	dinv := make([]float64, n)
	for i := 0; i < n; i++ {
		deg := 0.0
		for j := 0; j < n; j++ {
			v, _ := raw.At(i, j)
			deg += v
		}
		if deg < epsDegree {
			deg = epsDegree
		}
		dinv[i] = 1.0 / math.Sqrt(deg)
	}

	norm, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, _ := raw.At(i, j)
			if v != 0 {
				_ = norm.Set(i, j, dinv[i]*v*dinv[j])
			}
		}
	}

	return norm, nil
}
