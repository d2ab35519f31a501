package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/store"
)

// Schema creates the document and run tables
const Schema = `
CREATE TABLE IF NOT EXISTS restroom_document (
	collection TEXT NOT NULL,
	id CHAR(24) NOT NULL,
	doc JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS restroom_document_type_idx
	ON restroom_document ((doc->>'type'));

CREATE TABLE IF NOT EXISTS import_run (
	run_id CHAR(26) PRIMARY KEY,
	label TEXT NOT NULL,
	collection TEXT NOT NULL,
	rows_total INTEGER NOT NULL DEFAULT 0,
	rows_invalid_coord INTEGER NOT NULL DEFAULT 0,
	rows_unique INTEGER NOT NULL DEFAULT 0,
	rows_duplicate INTEGER NOT NULL DEFAULT 0,
	start_index INTEGER NOT NULL DEFAULT 0,
	end_index INTEGER NOT NULL DEFAULT 0,
	committed INTEGER NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);
`

// upsertDocument replaces a document with the same id, like a keyed set
const upsertDocument = `
	INSERT INTO restroom_document (collection, id, doc, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (collection, id) DO UPDATE SET
		doc = EXCLUDED.doc,
		updated_at = EXCLUDED.updated_at
`

// Store keeps restroom documents in PostgreSQL as JSONB
type Store struct {
	db *sql.DB
}

// New wraps an open connection
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the tables if they don't exist
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create document schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteBatch upserts docs in a single transaction
func (s *Store) WriteBatch(ctx context.Context, collection string, docs []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertDocument)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range docs {
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", docs[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, docs[i].ID, string(data)); err != nil {
			return fmt.Errorf("failed to write document %s: %w", docs[i].ID, describe(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", describe(err))
	}
	return nil
}

// Get loads one document
func (s *Store) Get(ctx context.Context, collection, id string) (model.Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM restroom_document WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Record{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return rec, nil
}

// List returns a page of documents ordered by id
func (s *Store) List(ctx context.Context, collection string, limit, offset int) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM restroom_document WHERE collection = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec model.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of documents in a collection
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM restroom_document WHERE collection = $1`, collection).Scan(&n)
	return n, err
}

// CreateRun inserts a new run record
func (s *Store) CreateRun(ctx context.Context, run *store.ImportRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_run (
			run_id, label, collection, rows_total, rows_invalid_coord,
			rows_unique, rows_duplicate, start_index, end_index, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.RunID, run.Label, run.Collection,
		run.Stats.RowsTotal, run.Stats.RowsInvalidCoord, run.Stats.RowsUnique, run.Stats.RowsDuplicate,
		run.StartIndex, run.EndIndex, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", describe(err))
	}
	return nil
}

// CompleteRun stores the committed count and completion time
func (s *Store) CompleteRun(ctx context.Context, run *store.ImportRun) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_run SET committed = $1, completed_at = $2 WHERE run_id = $3
	`, run.Committed, pq.NullTime{Time: derefTime(run), Valid: run.CompletedAt != nil}, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to complete import run: %w", describe(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import run %s: %w", run.RunID, store.ErrNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.ImportRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, label, collection, rows_total, rows_invalid_coord,
			rows_unique, rows_duplicate, start_index, end_index, committed,
			started_at, completed_at
		FROM import_run
		ORDER BY run_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []store.ImportRun
	for rows.Next() {
		var run store.ImportRun
		var completed pq.NullTime
		if err := rows.Scan(&run.RunID, &run.Label, &run.Collection,
			&run.Stats.RowsTotal, &run.Stats.RowsInvalidCoord, &run.Stats.RowsUnique, &run.Stats.RowsDuplicate,
			&run.StartIndex, &run.EndIndex, &run.Committed, &run.StartedAt, &completed); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			run.CompletedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func derefTime(run *store.ImportRun) (t time.Time) {
	if run.CompletedAt != nil {
		t = *run.CompletedAt
	}
	return t
}

// describe adds the server detail of a Postgres error to its message
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Detail != "" {
		return fmt.Errorf("%w (%s)", err, pqErr.Detail)
	}
	return err
}
