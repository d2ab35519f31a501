package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mr30303/taxiDriver/internal/model"
)

// Batch size limits of the document store
const (
	DefaultBatchSize = 400
	MaxBatchSize     = 500
)

// Range is a half-open window [Start, End) over the sorted documents
type Range struct {
	Start int
	End   int
}

// Len returns the number of documents in the window
func (r Range) Len() int {
	return r.End - r.Start
}

// SelectRange clamps a resumable upload window. maxDocs <= 0 selects
// everything from start to the end.
func SelectRange(total, start, maxDocs int) Range {
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if maxDocs > 0 && maxDocs < total-start {
		end = start + maxDocs
	}
	return Range{Start: start, End: end}
}

// ClampBatchSize keeps a requested batch size within store limits
func ClampBatchSize(n int) int {
	if n <= 0 {
		return DefaultBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// Uploader writes documents to a store in bounded batches
type Uploader struct {
	Store       DocumentStore
	Collection  string
	BatchSize   int
	MaxAttempts int
	Backoff     time.Duration
	Logf        func(format string, args ...interface{})
}

// NewUploader creates an uploader with default batch and retry settings
func NewUploader(s DocumentStore, collection string) *Uploader {
	return &Uploader{
		Store:       s,
		Collection:  collection,
		BatchSize:   DefaultBatchSize,
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

// Upload writes docs batch by batch and returns how many were committed.
// A batch that still fails after its retries stops the upload; earlier
// batches stay committed so the run can resume from the returned count.
func (u *Uploader) Upload(ctx context.Context, docs []model.Record) (int, error) {
	total := len(docs)
	if total == 0 {
		u.logf("No documents to upload.")
		return 0, nil
	}

	size := ClampBatchSize(u.BatchSize)
	u.logf("Uploading %d docs to collection '%s'...", total, u.Collection)

	committed := 0
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}

		if err := u.writeWithRetry(ctx, docs[start:end]); err != nil {
			return committed, fmt.Errorf("batch [%d:%d] failed: %w", start, end, err)
		}
		committed += end - start
		u.logf("  committed %d/%d", committed, total)
	}

	u.logf("Upload complete.")
	return committed, nil
}

func (u *Uploader) writeWithRetry(ctx context.Context, batch []model.Record) error {
	attempts := u.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = u.Store.WriteBatch(ctx, u.Collection, batch); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		u.logf("  batch write failed (attempt %d/%d): %v", attempt, attempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

func (u *Uploader) logf(format string, args ...interface{}) {
	if u.Logf != nil {
		u.Logf(format, args...)
	}
}
