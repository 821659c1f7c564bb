// SPDX-License-Identifier: MIT

package schema

import (
	"sort"
	"strings"
)

// FieldDescriptor is one column of one table as delivered by a schema
// source. GroundTruthProperty is set only on labeled training/evaluation
// fields and is empty for fields to be predicted. Descriptors are
// treated as immutable once read.
type FieldDescriptor struct {
	TableName           string `json:"table_name"`
	FieldName           string `json:"field_name"`
	RawDatatype         string `json:"raw_datatype"`
	GroundTruthProperty string `json:"ground_truth_property,omitempty"`
}

// Key returns the canonical identity of the field, "<table>.<field>".
func (f FieldDescriptor) Key() string {
	return f.TableName + "." + f.FieldName
}

// Labeled reports whether the descriptor carries a ground-truth label.
func (f FieldDescriptor) Labeled() bool {
	return f.GroundTruthProperty != ""
}

// FieldRef identifies a field inside a relationship record.
type FieldRef struct {
	TableName string `json:"table_name"`
	FieldName string `json:"field_name"`
}

// Key returns "<table>.<field>", matching FieldDescriptor.Key.
func (r FieldRef) Key() string {
	return r.TableName + "." + r.FieldName
}

// RelationshipPair is one externally declared foreign-key relationship.
// Pairs are consumed verbatim by graph construction; nothing in this
// module ever infers a foreign key from name heuristics.
type RelationshipPair struct {
	A FieldRef `json:"a"`
	B FieldRef `json:"b"`
}

// Candidate is one ranked vocabulary entry in a prediction.
type Candidate struct {
	Property   string  `json:"property"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the ranked mapping result for one schema field, shaped for
// direct JSON serialization toward presentation layers.
type Prediction struct {
	TableName string      `json:"table_name"`
	FieldName string      `json:"field_name"`
	TopK      []Candidate `json:"top_k"`
}

// CanonicalOrder returns a fresh slice of fields sorted by the canonical
// (TableName, FieldName) key. This ordering is the node-index convention of
// the whole pipeline: identical field sets produce identical numbering
// regardless of input order. The input slice is not mutated.
func CanonicalOrder(fields []FieldDescriptor) []FieldDescriptor {
	out := make([]FieldDescriptor, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TableName != out[j].TableName {
			return out[i].TableName < out[j].TableName
		}
		return out[i].FieldName < out[j].FieldName
	})

	return out
}

// Property is one entry of the ontology vocabulary.
type Property struct {
	Name        string `json:"name"`
	Datatype    string `json:"datatype"`
	Description string `json:"description,omitempty"`
}

// Vocabulary is the closed, ordered set of ontology properties the learner
// classifies fields into. The ordering is frozen at construction and shared
// by model outputs, snapshots and metrics; index i everywhere means the
// same property.
type Vocabulary struct {
	props []Property
	index map[string]int
}

// NewVocabulary validates and freezes an ordered property list.
//
// Errors: ErrEmptyVocabulary, ErrBlankProperty, ErrDuplicateProperty.
func NewVocabulary(props []Property) (*Vocabulary, error) {
	if len(props) == 0 {
		return nil, ErrEmptyVocabulary
	}

	v := &Vocabulary{
		props: make([]Property, len(props)),
		index: make(map[string]int, len(props)),
	}
	for i, p := range props {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, ErrBlankProperty
		}
		if _, dup := v.index[name]; dup {
			return nil, ErrDuplicateProperty
		}
		p.Name = name
		v.props[i] = p
		v.index[name] = i
	}

	return v, nil
}

// NewVocabularyFromNames builds a vocabulary from bare identifiers.
func NewVocabularyFromNames(names []string) (*Vocabulary, error) {
	props := make([]Property, len(names))
	for i, n := range names {
		props[i] = Property{Name: n}
	}

	return NewVocabulary(props)
}

// Size returns the number of classes C.
func (v *Vocabulary) Size() int { return len(v.props) }

// IndexOf returns the class index of a property name.
// Errors: ErrUnknownProperty.
func (v *Vocabulary) IndexOf(name string) (int, error) {
	i, ok := v.index[name]
	if !ok {
		return 0, ErrUnknownProperty
	}

	return i, nil
}

// Name returns the property name at class index i, or "" when out of range.
func (v *Vocabulary) Name(i int) string {
	if i < 0 || i >= len(v.props) {
		return ""
	}

	return v.props[i].Name
}

// Property returns the full property record at class index i.
func (v *Vocabulary) Property(i int) (Property, bool) {
	if i < 0 || i >= len(v.props) {
		return Property{}, false
	}

	return v.props[i], true
}

// Names returns the ordered property identifiers as a fresh slice.
func (v *Vocabulary) Names() []string {
	out := make([]string, len(v.props))
	for i, p := range v.props {
		out[i] = p.Name
	}

	return out
}
