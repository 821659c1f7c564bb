// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/ontoforge/schemamap/datagen"
	"github.com/ontoforge/schemamap/ontology"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/store"
)

// openStore opens the run database named by the --db flag.
func openStore() (*store.Store, error) {
	return store.Open(dbPath)
}

// loadVocabulary resolves the label set: an explicit ontology file when
// --ontology is set, the generator's built-in vocabulary otherwise.
func loadVocabulary() (*schema.Vocabulary, error) {
	if ontologyPath != "" {
		return ontology.Load(ontologyPath)
	}

	return schema.NewVocabulary(datagen.Properties())
}
