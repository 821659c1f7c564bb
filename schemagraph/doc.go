// SPDX-License-Identifier: MIT

// Package schemagraph builds the node set and normalized adjacency
// structure the learner operates on.
//
// Every schema field becomes one node; node indices follow canonical
// (table, field) ordering, so identical field sets always number
// identically regardless of input order. Edges come from three
// independent rules:
//
//   - same_table:   every pair of fields sharing a table;
//   - foreign_key:  every externally declared relationship pair,
//     consumed verbatim and never inferred from name heuristics;
//   - similar_name: pairs whose tokenized field names overlap above a
//     configurable Dice-coefficient threshold.
//
// Rule matches on the same pair collapse into one undirected edge whose
// weight is the sum of the per-rule weights. Self-loops are always added
// before symmetric degree normalization, Â = D^(-1/2)(A+I)D^(-1/2), so
// isolated nodes keep a well-defined row.
//
// A Graph is built once per schema snapshot and treated as immutable;
// re-ingesting a changed schema means building a fresh Graph.
package schemagraph
