// SPDX-License-Identifier: MIT

package datagen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/datagen"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
)

func TestGenerate_ReproducibleForSeed(t *testing.T) {
	a := datagen.Generate(5, 42)
	b := datagen.Generate(5, 42)
	require.Equal(t, a, b)

	c := datagen.Generate(5, 43)
	require.NotEqual(t, a, c)
}

func TestGenerate_AllFieldsLabeledWithKnownProperties(t *testing.T) {
	vocab, err := schema.NewVocabulary(datagen.Properties())
	require.NoError(t, err)

	ds := datagen.Generate(6, 7)
	require.NotEmpty(t, ds.Fields)

	for _, f := range ds.Fields {
		require.True(t, f.Labeled(), "field %s", f.Key())
		_, err := vocab.IndexOf(f.GroundTruthProperty)
		require.NoError(t, err, "field %s", f.Key())
	}
}

func TestGenerate_UniqueFieldKeys(t *testing.T) {
	ds := datagen.Generate(8, 3)

	seen := make(map[string]bool)
	for _, f := range ds.Fields {
		require.False(t, seen[f.Key()], "duplicate field %s", f.Key())
		seen[f.Key()] = true
	}
}

func TestGenerate_RelationshipsResolve(t *testing.T) {
	ds := datagen.Generate(6, 11)
	require.Len(t, ds.Relationships, 5) // one per table after the first

	keys := make(map[string]bool)
	for _, f := range ds.Fields {
		keys[f.Key()] = true
	}
	for _, r := range ds.Relationships {
		require.True(t, keys[r.A.Key()], "fk endpoint %s", r.A.Key())
		require.True(t, keys[r.B.Key()], "fk endpoint %s", r.B.Key())
	}
}

func TestGenerate_FeedsGraphBuilder(t *testing.T) {
	ds := datagen.Generate(4, 21)

	g, err := schemagraph.Build(ds.Fields, ds.Relationships, schemagraph.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, len(ds.Fields), g.NodeCount())
}
