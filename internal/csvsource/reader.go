package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr30303/taxiDriver/internal/dataset"
	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/registry"
)

// CleanHeader strips a byte-order mark, surrounding whitespace and quotes
func CleanHeader(value string) string {
	value = strings.ReplaceAll(value, "\ufeff", "")
	return strings.Trim(strings.TrimSpace(value), `"`)
}

// cleanValue trims whitespace and then any surrounding quotes
func cleanValue(value string) string {
	return strings.Trim(strings.TrimSpace(value), `"`)
}

// Reader yields CSV rows keyed by cleaned header name
type Reader struct {
	csv    *csv.Reader
	header []string
}

// NewReader reads the header line and prepares row iteration. A source with
// no header yields no rows.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &Reader{csv: cr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = CleanHeader(h)
	}
	return &Reader{csv: cr, header: cleaned}, nil
}

// Header returns the cleaned column names
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next row or io.EOF. Short lines leave missing columns
// empty; fields beyond the header are dropped.
func (r *Reader) Next() (model.Row, error) {
	if r.header == nil {
		return nil, io.EOF
	}

	record, err := r.csv.Read()
	if err != nil {
		return nil, err
	}

	row := make(model.Row, len(r.header))
	for i, col := range r.header {
		if i < len(record) {
			row[col] = cleanValue(record[i])
		} else {
			row[col] = ""
		}
	}
	return row, nil
}

// Close is a no-op; the whole source is decoded up front
func (r *Reader) Close() error {
	return nil
}

// Dir serves registered sources from CSV files in one directory
type Dir struct {
	Path      string
	Encodings []string
}

// NewDir creates a directory source using the default encodings
func NewDir(path string) *Dir {
	return &Dir{Path: path, Encodings: DefaultEncodings}
}

// Open decodes the schema's file and returns its rows
func (d *Dir) Open(schema registry.SourceSchema) (dataset.RowIterator, error) {
	path := filepath.Join(d.Path, schema.File)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("missing source CSV %s: %w", path, dataset.ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, _, err := Decode(raw, d.Encodings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reader, err := NewReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reader, nil
}
