// SPDX-License-Identifier: MIT

// Package schema defines the shared data model of the mapping pipeline:
// raw field descriptors as they arrive from a schema source, declared
// foreign-key relationship metadata, the closed ontology-property
// vocabulary predictions are expressed in, and the ranked prediction
// records handed to presentation layers.
//
// Everything here is a plain immutable value type. Descriptors are never
// mutated after ingestion; a Vocabulary is frozen at construction; the
// canonical ordering of fields (CanonicalOrder) is the single node-index
// convention every other package relies on.
package schema
