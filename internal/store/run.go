package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mr30303/taxiDriver/internal/model"
)

// ImportRun describes one upload of a built dataset
type ImportRun struct {
	RunID       string      `json:"run_id"`
	Label       string      `json:"label"`
	Collection  string      `json:"collection"`
	Stats       model.Stats `json:"stats"`
	StartIndex  int         `json:"start_index"`
	EndIndex    int         `json:"end_index"`
	Committed   int         `json:"committed"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a time-ordered unique run id
func NewRunID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewImportRun starts a run record for uploading the given range
func NewImportRun(label, collection string, stats model.Stats, r Range) *ImportRun {
	now := time.Now().UTC()
	if label == "" {
		label = "import-" + now.Format("20060102-150405")
	}
	return &ImportRun{
		RunID:      NewRunID(now),
		Label:      label,
		Collection: collection,
		Stats:      stats,
		StartIndex: r.Start,
		EndIndex:   r.End,
		StartedAt:  now,
	}
}

// Complete stamps the run with its committed count and finish time
func (r *ImportRun) Complete(committed int) {
	now := time.Now().UTC()
	r.Committed = committed
	r.CompletedAt = &now
}
