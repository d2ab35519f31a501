package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS restroom_document (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	doc TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE TABLE IF NOT EXISTS import_run (
	run_id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	collection TEXT NOT NULL,
	rows_total INTEGER NOT NULL DEFAULT 0,
	rows_invalid_coord INTEGER NOT NULL DEFAULT 0,
	rows_unique INTEGER NOT NULL DEFAULT 0,
	rows_duplicate INTEGER NOT NULL DEFAULT 0,
	start_index INTEGER NOT NULL DEFAULT 0,
	end_index INTEGER NOT NULL DEFAULT 0,
	committed INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	completed_at TEXT
);
`

// Store keeps restroom documents in a local SQLite file, used for snapshots
// and offline testing of uploads
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite document store with WAL enabled
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// one writer at a time; batches are transactions
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteBatch upserts all docs in one transaction
func (s *Store) WriteBatch(ctx context.Context, collection string, docs []model.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO restroom_document (collection, id, doc, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			doc = excluded.doc,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i := range docs {
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", docs[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, docs[i].ID, string(data), now); err != nil {
			return fmt.Errorf("failed to write document %s: %w", docs[i].ID, err)
		}
	}

	return tx.Commit()
}

// Get loads one document by id
func (s *Store) Get(ctx context.Context, collection, id string) (model.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM restroom_document WHERE collection = ? AND id = ?`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	var rec model.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return model.Record{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return rec, nil
}

// List returns documents ordered by id
func (s *Store) List(ctx context.Context, collection string, limit, offset int) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM restroom_document WHERE collection = ? ORDER BY id LIMIT ? OFFSET ?`,
		collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
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
		`SELECT COUNT(*) FROM restroom_document WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// CreateRun inserts a new run record
func (s *Store) CreateRun(ctx context.Context, run *store.ImportRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_run (
			run_id, label, collection, rows_total, rows_invalid_coord,
			rows_unique, rows_duplicate, start_index, end_index, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Label, run.Collection,
		run.Stats.RowsTotal, run.Stats.RowsInvalidCoord, run.Stats.RowsUnique, run.Stats.RowsDuplicate,
		run.StartIndex, run.EndIndex, run.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// CompleteRun stores the committed count and completion time
func (s *Store) CompleteRun(ctx context.Context, run *store.ImportRun) error {
	var completed interface{}
	if run.CompletedAt != nil {
		completed = run.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE import_run SET committed = ?, completed_at = ? WHERE run_id = ?`,
		run.Committed, completed, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to complete import run: %w", err)
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
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	var runs []store.ImportRun
	for rows.Next() {
		var run store.ImportRun
		var started string
		var completed sql.NullString
		if err := rows.Scan(&run.RunID, &run.Label, &run.Collection,
			&run.Stats.RowsTotal, &run.Stats.RowsInvalidCoord, &run.Stats.RowsUnique, &run.Stats.RowsDuplicate,
			&run.StartIndex, &run.EndIndex, &run.Committed, &started, &completed); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", run.RunID, err)
		}
		if completed.Valid {
			t, err := time.Parse(time.RFC3339Nano, completed.String)
			if err != nil {
				return nil, fmt.Errorf("run %s: bad completed_at: %w", run.RunID, err)
			}
			run.CompletedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
