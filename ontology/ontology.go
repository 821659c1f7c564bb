// SPDX-License-Identifier: MIT

// Package ontology loads the property vocabulary from its JSON document.
// The loaded vocabulary is the closed label set of a whole training or
// inference run; it must not change mid-run, so loading happens once up
// front and hands out an immutable schema.Vocabulary.
package ontology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ontoforge/schemamap/schema"
)

// ErrBadDocument is returned for structurally invalid ontology JSON.
var ErrBadDocument = errors.New("ontology: invalid document")

// Document is the on-disk layout of an ontology file.
type Document struct {
	Metadata   Metadata          `json:"metadata"`
	Properties []schema.Property `json:"properties"`
}

// Metadata describes the ontology itself, not any single property.
type Metadata struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Load reads an ontology file and freezes its property list into a
// vocabulary.
//
// Errors: ErrBadDocument for malformed JSON; schema.ErrEmptyVocabulary,
// schema.ErrBlankProperty and schema.ErrDuplicateProperty propagate from
// vocabulary validation.
func Load(path string) (*schema.Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ontology: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Read decodes an ontology document from a stream. Unknown top-level
// keys are rejected so a schema file passed by mistake fails loudly.
func Read(r io.Reader) (*schema.Vocabulary, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	return schema.NewVocabulary(doc.Properties)
}
