// SPDX-License-Identifier: MIT

package schemagraph

import (
	"github.com/ontoforge/schemamap/matrix"
	"github.com/ontoforge/schemamap/schema"
)

// EdgeType names the rule that produced (or contributed to) an edge.
type EdgeType string

const (
	EdgeSameTable   EdgeType = "same_table"
	EdgeForeignKey  EdgeType = "foreign_key"
	EdgeSimilarName EdgeType = "similar_name"
)

// Node is one schema field with its stable index and encoded features.
// The index is assigned at build time and invariant for the lifetime of
// the graph snapshot.
type Node struct {
	Index    int
	Field    schema.FieldDescriptor
	Features []float64
}

// Edge is one undirected merged edge. A < B always holds; Types lists
// every rule that contributed, in fixed rule order, and Weight is the sum
// of the contributing rule weights.
type Edge struct {
	A      int
	B      int
	Types  []EdgeType
	Weight float64
}

// Graph is the immutable build output: nodes in canonical order, the
// merged edge list sorted by (A, B), the N×D feature matrix H0 and the
// N×N normalized adjacency Â.
type Graph struct {
	Nodes    []Node
	Edges    []Edge
	Features *matrix.Dense
	Adj      *matrix.Dense
}

// NodeCount returns N.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// IndexOf returns the node index of a (table, field) key, or -1 when the
// field is not part of the snapshot.
func (g *Graph) IndexOf(table, field string) int {
	key := table + "." + field
	for _, n := range g.Nodes {
		if n.Field.Key() == key {
			return n.Index
		}
	}

	return -1
}
