package store

import (
	"context"
	"errors"

	"github.com/mr30303/taxiDriver/internal/model"
)

// ErrNotFound is returned when a document or run does not exist
var ErrNotFound = errors.New("not found")

// DefaultCollection is where master restroom documents are written
const DefaultCollection = "restrooms_master"

// DocumentStore is a keyed document database. Writing a document replaces any
// existing document with the same id in the collection.
type DocumentStore interface {
	WriteBatch(ctx context.Context, collection string, docs []model.Record) error
	Get(ctx context.Context, collection, id string) (model.Record, error)
	List(ctx context.Context, collection string, limit, offset int) ([]model.Record, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

// RunTracker keeps an audit trail of upload runs
type RunTracker interface {
	CreateRun(ctx context.Context, run *ImportRun) error
	CompleteRun(ctx context.Context, run *ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]ImportRun, error)
}

// Backend is a document store that also tracks runs
type Backend interface {
	DocumentStore
	RunTracker
}
