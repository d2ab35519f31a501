package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mr30303/taxiDriver/internal/model"
)

// maxLineSize bounds a single JSONL document when reading an export back
const maxLineSize = 4 * 1024 * 1024

// WriteJSONL writes one document per line to path, creating parent
// directories. Korean text is written as UTF-8, not escaped.
func WriteJSONL(path string, records []model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := Encode(w, records); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush export file: %w", err)
	}
	return file.Close()
}

// Encode writes records as JSON lines to w
func Encode(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("failed to encode document %s: %w", records[i].ID, err)
		}
	}
	return nil
}

// ReadJSONL loads a previous export
func ReadJSONL(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file %s: %w", path, err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads JSON lines from r, skipping blank lines
func Decode(r io.Reader) ([]model.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []model.Record
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return records, nil
}
