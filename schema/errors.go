// SPDX-License-Identifier: MIT
// Package schema: sentinel error set.

package schema

import "errors"

var (
	// ErrEmptyVocabulary is returned when a Vocabulary is constructed with
	// zero properties; a closed label set must not be empty.
	ErrEmptyVocabulary = errors.New("schema: empty vocabulary")

	// ErrDuplicateProperty is returned when the same property identifier
	// appears twice in a vocabulary definition.
	ErrDuplicateProperty = errors.New("schema: duplicate property")

	// ErrBlankProperty is returned when a property identifier is empty or
	// whitespace-only.
	ErrBlankProperty = errors.New("schema: blank property identifier")

	// ErrUnknownProperty is returned when a label references a property
	// outside the closed vocabulary; such a field cannot be represented.
	ErrUnknownProperty = errors.New("schema: property not in vocabulary")
)
