package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/mr30303/taxiDriver/internal/db"
	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/store"
	"github.com/mr30303/taxiDriver/internal/store/postgres"
	"github.com/mr30303/taxiDriver/internal/store/sqlite"
)

const (
	storePostgres = "postgres"
	storeSQLite   = "sqlite"
)

// openBackend connects to the configured document store and ensures its schema
func openBackend(ctx context.Context, opts *globalOptions) (store.Backend, error) {
	switch opts.storeKind {
	case storeSQLite:
		s, err := sqlite.Open(ctx, opts.sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case storePostgres:
		conn, err := db.NewConnection(ctx)
		if err != nil {
			return nil, err
		}
		pg := postgres.New(conn.DB)
		if err := pg.Init(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return nil, usagef("unknown --store %q", opts.storeKind)
}

// uploadOptions select the window and batching of an upload
type uploadOptions struct {
	batchSize  int
	startIndex int
	maxDocs    int
	label      string
}

func (u uploadOptions) validate() error {
	if u.startIndex < 0 {
		return usagef("--start-index must not be negative")
	}
	if u.maxDocs < 0 {
		return usagef("--max-docs must not be negative")
	}
	return nil
}

// uploadDocuments writes the selected window of docs and records the run.
// The run is completed with whatever was committed, even on failure, so a
// later upload can resume from StartIndex+Committed.
func uploadDocuments(ctx context.Context, out io.Writer, backend store.Backend, collection string,
	docs []model.Record, stats model.Stats, r store.Range, u uploadOptions) (*store.ImportRun, error) {

	run := store.NewImportRun(u.label, collection, stats, r)
	if err := backend.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	uploader := store.NewUploader(backend, collection)
	uploader.BatchSize = store.ClampBatchSize(u.batchSize)
	uploader.Logf = func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	committed, uploadErr := uploader.Upload(ctx, docs[r.Start:r.End])

	run.Complete(committed)
	if err := backend.CompleteRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("Warning: failed to record import run %s: %v", run.RunID, err)
	}
	if uploadErr != nil {
		return run, fmt.Errorf("upload stopped after %d docs (resume with --start-index %d): %w",
			committed, r.Start+committed, uploadErr)
	}
	return run, nil
}
