// SPDX-License-Identifier: MIT

// Package store persists schema snapshots, training runs and prediction
// results in a local SQLite database, so a training run and the
// inference results it produced stay inspectable after the process
// exits.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ontoforge/schemamap/schema"
)

// ErrNoRuns is returned when no training run has been recorded yet.
var ErrNoRuns = errors.New("store: no training runs recorded")

// Store wraps the SQLite handle. Open once, share freely; database/sql
// serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and bootstraps
// the schema. WAL mode keeps readers unblocked during writes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// performance pragmas + schema in a single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;

		CREATE TABLE IF NOT EXISTS schema_fields (
			table_name   TEXT NOT NULL,
			field_name   TEXT NOT NULL,
			raw_datatype TEXT NOT NULL,
			ground_truth TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (table_name, field_name)
		);
		CREATE TABLE IF NOT EXISTS relationships (
			a_table TEXT NOT NULL,
			a_field TEXT NOT NULL,
			b_table TEXT NOT NULL,
			b_field TEXT NOT NULL,
			PRIMARY KEY (a_table, a_field, b_table, b_field)
		);
		CREATE TABLE IF NOT EXISTS training_runs (
			id            TEXT PRIMARY KEY,
			created_at    INTEGER NOT NULL,
			best_epoch    INTEGER NOT NULL,
			best_val_loss REAL NOT NULL,
			stopped_early INTEGER NOT NULL,
			snapshot_path TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS predictions (
			run_id     TEXT NOT NULL REFERENCES training_runs(id),
			table_name TEXT NOT NULL,
			field_name TEXT NOT NULL,
			rank       INTEGER NOT NULL,
			property   TEXT NOT NULL,
			confidence REAL NOT NULL,
			PRIMARY KEY (run_id, table_name, field_name, rank)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDataset replaces the stored schema snapshot with the given fields
// and relationship metadata, atomically.
func (s *Store) SaveDataset(
	ctx context.Context,
	fields []schema.FieldDescriptor,
	rels []schema.RelationshipPair,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin dataset tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schema_fields`); err != nil {
		return fmt.Errorf("store: clear fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return fmt.Errorf("store: clear relationships: %w", err)
	}

	for _, f := range fields {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_fields
				(table_name, field_name, raw_datatype, ground_truth)
			VALUES (?, ?, ?, ?)`,
			f.TableName, f.FieldName, f.RawDatatype, f.GroundTruthProperty)
		if err != nil {
			return fmt.Errorf("store: insert field %s: %w", f.Key(), err)
		}
	}
	for _, r := range rels {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO relationships
				(a_table, a_field, b_table, b_field)
			VALUES (?, ?, ?, ?)`,
			r.A.TableName, r.A.FieldName, r.B.TableName, r.B.FieldName)
		if err != nil {
			return fmt.Errorf("store: insert relationship: %w", err)
		}
	}

	return tx.Commit()
}

// LoadDataset reads the stored schema snapshot in canonical order.
func (s *Store) LoadDataset(ctx context.Context) ([]schema.FieldDescriptor, []schema.RelationshipPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, field_name, raw_datatype, ground_truth
		FROM schema_fields
		ORDER BY table_name, field_name`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query fields: %w", err)
	}
	defer rows.Close()

	var fields []schema.FieldDescriptor
	for rows.Next() {
		var f schema.FieldDescriptor
		if err := rows.Scan(&f.TableName, &f.FieldName, &f.RawDatatype, &f.GroundTruthProperty); err != nil {
			return nil, nil, fmt.Errorf("store: scan field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: iterate fields: %w", err)
	}

	relRows, err := s.db.QueryContext(ctx, `
		SELECT a_table, a_field, b_table, b_field
		FROM relationships
		ORDER BY a_table, a_field, b_table, b_field`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: query relationships: %w", err)
	}
	defer relRows.Close()

	var rels []schema.RelationshipPair
	for relRows.Next() {
		var r schema.RelationshipPair
		if err := relRows.Scan(&r.A.TableName, &r.A.FieldName, &r.B.TableName, &r.B.FieldName); err != nil {
			return nil, nil, fmt.Errorf("store: scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	if err := relRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: iterate relationships: %w", err)
	}

	return fields, rels, nil
}

// Run is one recorded training run.
type Run struct {
	ID           string
	CreatedAt    time.Time
	BestEpoch    int
	BestValLoss  float64
	StoppedEarly bool
	SnapshotPath string
}

// RecordRun persists a training run's outcome. A blank ID gets a fresh
// UUID; the stored run is returned.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO training_runs
			(id, created_at, best_epoch, best_val_loss, stopped_early, snapshot_path)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Unix(), run.BestEpoch, run.BestValLoss,
		boolInt(run.StoppedEarly), run.SnapshotPath)
	if err != nil {
		return Run{}, fmt.Errorf("store: record run: %w", err)
	}

	return run, nil
}

// LatestRun returns the most recently recorded run.
// Errors: ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, best_epoch, best_val_loss, stopped_early, snapshot_path
		FROM training_runs
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)

	var run Run
	var created int64
	var stopped int
	err := row.Scan(&run.ID, &created, &run.BestEpoch, &run.BestValLoss,
		&stopped, &run.SnapshotPath)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("store: load latest run: %w", err)
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	run.StoppedEarly = stopped != 0

	return run, nil
}

// SavePredictions persists ranked predictions for a run.
func (s *Store) SavePredictions(ctx context.Context, runID string, preds []schema.Prediction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin predictions tx: %w", err)
	}
	defer tx.Rollback()

	for _, p := range preds {
		for rank, c := range p.TopK {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO predictions
					(run_id, table_name, field_name, rank, property, confidence)
				VALUES (?, ?, ?, ?, ?, ?)`,
				runID, p.TableName, p.FieldName, rank, c.Property, c.Confidence)
			if err != nil {
				return fmt.Errorf("store: insert prediction %s.%s: %w",
					p.TableName, p.FieldName, err)
			}
		}
	}

	return tx.Commit()
}

// Predictions loads the ranked predictions of a run, grouped per field
// in canonical order.
func (s *Store) Predictions(ctx context.Context, runID string) ([]schema.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, field_name, property, confidence
		FROM predictions
		WHERE run_id = ?
		ORDER BY table_name, field_name, rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: query predictions: %w", err)
	}
	defer rows.Close()

	var preds []schema.Prediction
	for rows.Next() {
		var table, field string
		var c schema.Candidate
		if err := rows.Scan(&table, &field, &c.Property, &c.Confidence); err != nil {
			return nil, fmt.Errorf("store: scan prediction: %w", err)
		}
		if n := len(preds); n == 0 || preds[n-1].TableName != table || preds[n-1].FieldName != field {
			preds = append(preds, schema.Prediction{TableName: table, FieldName: field})
		}
		last := &preds[len(preds)-1]
		last.TopK = append(last.TopK, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate predictions: %w", err)
	}

	return preds, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
