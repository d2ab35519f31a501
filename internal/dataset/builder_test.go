package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/registry"
)

// memSource serves rows from memory keyed by source file
type memSource map[string][]model.Row

func (m memSource) Open(schema registry.SourceSchema) (RowIterator, error) {
	rows, ok := m[schema.File]
	if !ok {
		return nil, fmt.Errorf("%s: %w", schema.File, ErrSourceNotFound)
	}
	return &memIterator{rows: rows}, nil
}

type memIterator struct {
	rows []model.Row
	pos  int
	err  error
}

func (it *memIterator) Next() (model.Row, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *memIterator) Close() error { return nil }

func schema(region, file string) registry.SourceSchema {
	return registry.SourceSchema{
		Region:      region,
		File:        file,
		Name:        []string{"name"},
		RoadAddress: []string{"road"},
		LotAddress:  []string{"lot"},
		Latitude:    []string{"lat"},
		Longitude:   []string{"lng"},
		Category:    []string{"category"},
		OpenHours:   []string{"hours"},
		Ownership:   []string{"owner"},
	}
}

func testRegistry(t *testing.T) registry.Registry {
	t.Helper()
	reg, err := registry.New(schema("alpha", "a.csv"), schema("beta", "b.csv"))
	require.NoError(t, err)
	return reg
}

func TestBuildMergesAcrossSources(t *testing.T) {
	source := memSource{
		"a.csv": {
			{"name": "City Hall WC", "road": "1 Main St", "lat": "37.12345", "lng": "127.54321"},
		},
		"b.csv": {
			{"name": "", "road": "1 Main St ", "lat": "37.123451", "lng": "127.543209"},
		},
	}

	docs, stats, err := NewBuilder(testRegistry(t), source).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, 1, doc.DuplicateCount)
	assert.Equal(t, []string{"a.csv", "b.csv"}, doc.SourceFiles)
	assert.Equal(t, []string{"2", "2"}, doc.SourceRowIDs)
	assert.Equal(t, "City Hall WC", doc.Name)
	assert.Equal(t, model.Stats{RowsTotal: 2, RowsUnique: 1, RowsDuplicate: 1}, stats)
}

func TestBuildBackfillsFromLaterSource(t *testing.T) {
	source := memSource{
		"a.csv": {{"name": "", "road": "1 Main St", "lat": "37.1", "lng": "127.1"}},
		"b.csv": {{"name": "City Hall WC", "road": "1 main st", "lat": "37.1", "lng": "127.1"}},
	}

	docs, _, err := NewBuilder(testRegistry(t), source).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "City Hall WC", docs[0].Name)
	assert.Equal(t, "1 Main St", docs[0].Description, "description stays as first built")
}

func TestBuildCountsInvalidCoordinates(t *testing.T) {
	source := memSource{
		"a.csv": {
			{"name": "North Pole", "lat": "91.0", "lng": "0"},
			{"name": "Nowhere", "lat": "", "lng": "127"},
			{"name": "Ok", "lat": "37", "lng": "127"},
		},
		"b.csv": {},
	}

	docs, stats, err := NewBuilder(testRegistry(t), source).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ok", docs[0].Name)
	assert.Equal(t, 3, stats.RowsTotal)
	assert.Equal(t, 2, stats.RowsInvalidCoord)
	assert.True(t, stats.Valid())
}

func TestBuildRowNumbersStartAfterHeader(t *testing.T) {
	source := memSource{
		"a.csv": {
			{"name": "one", "lat": "37", "lng": "127"},
			{"name": "two", "lat": "38", "lng": "127"},
		},
		"b.csv": {},
	}

	docs, _, err := NewBuilder(testRegistry(t), source).Build(context.Background())
	require.NoError(t, err)

	ids := map[string]string{}
	for _, d := range docs {
		ids[d.Name] = d.SourceRowID
	}
	assert.Equal(t, map[string]string{"one": "2", "two": "3"}, ids)
}

func TestBuildMissingSourceIsFatal(t *testing.T) {
	source := memSource{
		"a.csv": {{"name": "x", "lat": "37", "lng": "127"}},
	}

	docs, _, err := NewBuilder(testRegistry(t), source).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))
	assert.Contains(t, err.Error(), "b.csv")
	assert.Nil(t, docs)
}

func TestBuildReadErrorIsFatal(t *testing.T) {
	boom := errors.New("decode failed")
	reg, err := registry.New(schema("alpha", "a.csv"))
	require.NoError(t, err)

	builder := NewBuilder(reg, failingSource{err: boom})
	_, _, err = builder.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

type failingSource struct{ err error }

func (f failingSource) Open(registry.SourceSchema) (RowIterator, error) {
	return &memIterator{err: f.err}, nil
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := memSource{"a.csv": {{"lat": "37", "lng": "127"}}, "b.csv": {}}
	_, _, err := NewBuilder(testRegistry(t), source).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildIsDeterministic(t *testing.T) {
	source := memSource{
		"a.csv": {
			{"name": "A", "road": "서울 중구 1", "lat": "37.5", "lng": "127.0", "category": "공중화장실"},
			{"name": "B", "lat": "37.6", "lng": "127.1", "category": "민간"},
			{"name": "", "lat": "37.7", "lng": "127.2", "hours": "09:00-18:00"},
		},
		"b.csv": {
			{"name": "A2", "road": "서울 중구 1", "lat": "37.500001", "lng": "127.0"},
			{"name": "C", "lot": "경기 2", "lat": "36.0", "lng": "126.0"},
		},
	}

	reg := testRegistry(t)
	first, statsA, err := NewBuilder(reg, source).Build(context.Background())
	require.NoError(t, err)
	second, statsB, err := NewBuilder(reg, source).Build(context.Background())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, statsA, statsB)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}
}

func TestBuildOrderIndependentIDs(t *testing.T) {
	rowsA := []model.Row{{"name": "A", "road": "1 Main", "lat": "37", "lng": "127"}}
	rowsB := []model.Row{{"name": "B", "road": "2 Main", "lat": "38", "lng": "127"}}

	forward, err := registry.New(schema("alpha", "a.csv"), schema("beta", "b.csv"))
	require.NoError(t, err)
	reverse, err := registry.New(schema("beta", "b.csv"), schema("alpha", "a.csv"))
	require.NoError(t, err)

	source := memSource{"a.csv": rowsA, "b.csv": rowsB}
	x, _, err := NewBuilder(forward, source).Build(context.Background())
	require.NoError(t, err)
	y, _, err := NewBuilder(reverse, source).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, x, 2)
	require.Len(t, y, 2)
	assert.Equal(t, x[0].ID, y[0].ID)
	assert.Equal(t, x[1].ID, y[1].ID)
}

func TestRunReportsConflicts(t *testing.T) {
	source := memSource{
		"a.csv": {{"name": "North", "road": "1 Main", "lat": "37", "lng": "127"}},
		"b.csv": {{"name": "South", "road": "1 Main", "lat": "37", "lng": "127"}},
	}

	res, err := NewBuilder(testRegistry(t), source).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "name", res.Conflicts[0].Field)
	assert.Equal(t, "North", res.Documents[0].Name)
}
