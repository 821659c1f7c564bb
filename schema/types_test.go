// SPDX-License-Identifier: MIT

package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/schema"
)

func TestCanonicalOrder_SortsByTableThenField(t *testing.T) {
	in := []schema.FieldDescriptor{
		{TableName: "orders", FieldName: "total"},
		{TableName: "customers", FieldName: "email"},
		{TableName: "orders", FieldName: "id"},
		{TableName: "customers", FieldName: "created_at"},
	}

	got := schema.CanonicalOrder(in)

	want := []string{
		"customers.created_at",
		"customers.email",
		"orders.id",
		"orders.total",
	}
	require.Len(t, got, len(want))
	for i, k := range want {
		require.Equal(t, k, got[i].Key())
	}
	// input untouched
	require.Equal(t, "orders.total", in[0].Key())
}

func TestCanonicalOrder_DeterministicAcrossPermutations(t *testing.T) {
	a := []schema.FieldDescriptor{
		{TableName: "t1", FieldName: "b"},
		{TableName: "t1", FieldName: "a"},
		{TableName: "t0", FieldName: "z"},
	}
	b := []schema.FieldDescriptor{
		{TableName: "t0", FieldName: "z"},
		{TableName: "t1", FieldName: "a"},
		{TableName: "t1", FieldName: "b"},
	}

	require.Equal(t, schema.CanonicalOrder(a), schema.CanonicalOrder(b))
}

func TestNewVocabulary_Valid(t *testing.T) {
	v, err := schema.NewVocabularyFromNames([]string{"hasName", "hasEmail", "hasPrice"})
	require.NoError(t, err)

	require.Equal(t, 3, v.Size())

	i, err := v.IndexOf("hasEmail")
	require.NoError(t, err)
	require.Equal(t, 1, i)

	require.Equal(t, "hasPrice", v.Name(2))
	require.Equal(t, []string{"hasName", "hasEmail", "hasPrice"}, v.Names())
}

func TestNewVocabulary_Empty(t *testing.T) {
	_, err := schema.NewVocabulary(nil)
	require.True(t, errors.Is(err, schema.ErrEmptyVocabulary))
}

func TestNewVocabulary_Blank(t *testing.T) {
	_, err := schema.NewVocabularyFromNames([]string{"hasName", "   "})
	require.True(t, errors.Is(err, schema.ErrBlankProperty))
}

func TestNewVocabulary_Duplicate(t *testing.T) {
	_, err := schema.NewVocabularyFromNames([]string{"hasName", "hasName"})
	require.True(t, errors.Is(err, schema.ErrDuplicateProperty))
}

func TestVocabulary_UnknownProperty(t *testing.T) {
	v, err := schema.NewVocabularyFromNames([]string{"hasName"})
	require.NoError(t, err)

	_, err = v.IndexOf("hasNope")
	require.True(t, errors.Is(err, schema.ErrUnknownProperty))

	require.Equal(t, "", v.Name(-1))
	require.Equal(t, "", v.Name(99))
}

func TestFieldDescriptor_Labeled(t *testing.T) {
	require.False(t, schema.FieldDescriptor{}.Labeled())
	require.True(t, schema.FieldDescriptor{GroundTruthProperty: "hasName"}.Labeled())
}
