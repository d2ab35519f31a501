package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mr30303/taxiDriver/internal/debug"
	"github.com/mr30303/taxiDriver/internal/merge"
	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/normalize"
	"github.com/mr30303/taxiDriver/internal/registry"
)

// ErrSourceNotFound is returned when a registered source has no input. A build
// never produces a dataset from an incomplete source set.
var ErrSourceNotFound = errors.New("source not found")

// firstDataRow is the line number of the first row after the header
const firstDataRow = 2

// RowIterator yields the rows of one source. Next returns io.EOF when done.
type RowIterator interface {
	Next() (model.Row, error)
	Close() error
}

// RowSource opens the rows of a registered source
type RowSource interface {
	Open(schema registry.SourceSchema) (RowIterator, error)
}

// Result is the outcome of one build
type Result struct {
	Documents []model.Record
	Stats     model.Stats
	Conflicts []merge.Conflict
}

// Builder normalizes and merges every registered source into one dataset
type Builder struct {
	Registry registry.Registry
	Source   RowSource
	Debug    bool
}

// NewBuilder creates a dataset builder
func NewBuilder(reg registry.Registry, source RowSource) *Builder {
	return &Builder{Registry: reg, Source: source}
}

// Build returns the deduplicated documents sorted by id and the row counters
func (b *Builder) Build(ctx context.Context) ([]model.Record, model.Stats, error) {
	res, err := b.Run(ctx)
	if err != nil {
		return nil, model.Stats{}, err
	}
	return res.Documents, res.Stats, nil
}

// Run builds the dataset and also reports merge conflicts
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	debug.Header(b.Debug, "dataset build")
	defer debug.Footer(b.Debug, "dataset build")

	set := merge.NewSet()
	var stats model.Stats

	for _, schema := range b.Registry.Schemas() {
		if err := b.foldSource(ctx, schema, set, &stats); err != nil {
			return nil, err
		}
	}

	debug.Output(b.Debug, "Build complete: total=%d invalid=%d unique=%d duplicate=%d",
		stats.RowsTotal, stats.RowsInvalidCoord, stats.RowsUnique, stats.RowsDuplicate)

	return &Result{
		Documents: set.Documents(),
		Stats:     stats,
		Conflicts: set.Conflicts(),
	}, nil
}

// foldSource normalizes every row of one source into the merge set
func (b *Builder) foldSource(ctx context.Context, schema registry.SourceSchema, set *merge.Set, stats *model.Stats) error {
	defer debug.Timing(b.Debug, "source "+schema.File)()

	rows, err := b.Source.Open(schema)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", schema.File, err)
	}
	defer rows.Close()

	before := *stats
	for rowNumber := firstDataRow; ; rowNumber++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s row %d: %w", schema.File, rowNumber, err)
		}

		stats.RowsTotal++
		rec, ok := normalize.Row(schema, row, rowNumber)
		if !ok {
			stats.RowsInvalidCoord++
			debug.Output(b.Debug, "%s row %d: invalid coordinates", schema.File, rowNumber)
			continue
		}

		if set.Add(rec) {
			stats.RowsUnique++
		} else {
			stats.RowsDuplicate++
		}
	}

	debug.Output(b.Debug, "%s (%s): rows=%d invalid=%d unique=%d duplicate=%d",
		schema.File, schema.Region,
		stats.RowsTotal-before.RowsTotal,
		stats.RowsInvalidCoord-before.RowsInvalidCoord,
		stats.RowsUnique-before.RowsUnique,
		stats.RowsDuplicate-before.RowsDuplicate)
	return nil
}
