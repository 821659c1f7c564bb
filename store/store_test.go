// SPDX-License-Identifier: MIT

package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/store"
)

func openTemp(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "schemamap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestDataset_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	fields := []schema.FieldDescriptor{
		{TableName: "orders", FieldName: "id", RawDatatype: "int", GroundTruthProperty: "hasIdentifier"},
		{TableName: "customers", FieldName: "email", RawDatatype: "varchar", GroundTruthProperty: "hasEmail"},
		{TableName: "customers", FieldName: "note", RawDatatype: "text"},
	}
	rels := []schema.RelationshipPair{{
		A: schema.FieldRef{TableName: "orders", FieldName: "id"},
		B: schema.FieldRef{TableName: "customers", FieldName: "email"},
	}}

	require.NoError(t, s.SaveDataset(ctx, fields, rels))

	gotFields, gotRels, err := s.LoadDataset(ctx)
	require.NoError(t, err)

	// reads come back in canonical order
	require.Equal(t, schema.CanonicalOrder(fields), gotFields)
	require.Equal(t, rels, gotRels)
}

func TestDataset_SaveReplacesPrevious(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	first := []schema.FieldDescriptor{{TableName: "a", FieldName: "x", RawDatatype: "int"}}
	second := []schema.FieldDescriptor{{TableName: "b", FieldName: "y", RawDatatype: "text"}}

	require.NoError(t, s.SaveDataset(ctx, first, nil))
	require.NoError(t, s.SaveDataset(ctx, second, nil))

	fields, rels, err := s.LoadDataset(ctx)
	require.NoError(t, err)
	require.Equal(t, second, fields)
	require.Empty(t, rels)
}

func TestRuns_RecordAndLatest(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.LatestRun(ctx)
	require.True(t, errors.Is(err, store.ErrNoRuns))

	first, err := s.RecordRun(ctx, store.Run{
		BestEpoch:    12,
		BestValLoss:  0.42,
		StoppedEarly: true,
		SnapshotPath: "/tmp/model.json",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second, err := s.RecordRun(ctx, store.Run{
		CreatedAt:    first.CreatedAt.Add(1e9),
		BestEpoch:    30,
		BestValLoss:  0.21,
		SnapshotPath: "/tmp/model2.json",
	})
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, 30, latest.BestEpoch)
	require.InDelta(t, 0.21, latest.BestValLoss, 1e-12)
	require.False(t, latest.StoppedEarly)
}

func TestPredictions_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run, err := s.RecordRun(ctx, store.Run{SnapshotPath: "/tmp/m.json"})
	require.NoError(t, err)

	preds := []schema.Prediction{
		{
			TableName: "customers", FieldName: "email",
			TopK: []schema.Candidate{
				{Property: "hasEmail", Confidence: 0.9},
				{Property: "hasName", Confidence: 0.1},
			},
		},
		{
			TableName: "orders", FieldName: "total",
			TopK: []schema.Candidate{
				{Property: "hasPrice", Confidence: 0.8},
				{Property: "hasQuantity", Confidence: 0.2},
			},
		},
	}

	require.NoError(t, s.SavePredictions(ctx, run.ID, preds))

	got, err := s.Predictions(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, preds, got)

	empty, err := s.Predictions(ctx, "no-such-run")
	require.NoError(t, err)
	require.Empty(t, empty)
}
