package merge

import (
	"sort"
	"strings"

	"github.com/mr30303/taxiDriver/internal/model"
)

// Conflict records a later row that disagreed with a value already kept
type Conflict struct {
	DedupeKey   string
	Field       string
	Kept        string
	Incoming    string
	SourceFile  string
	SourceRowID string
}

// Set folds normalized records into one record per dedupe key. The first row
// seen for a key owns its identity and geometry; later rows only add
// provenance and fill blank text fields.
type Set struct {
	records   map[string]*model.Record
	conflicts []Conflict
}

// NewSet creates an empty merge set
func NewSet() *Set {
	return &Set{records: make(map[string]*model.Record)}
}

// Add merges rec into the set and reports whether its key was new
func (s *Set) Add(rec model.Record) bool {
	current, ok := s.records[rec.DedupeKey]
	if !ok {
		rec.SourceFiles = []string{rec.SourceFile}
		rec.SourceRowIDs = []string{rec.SourceRowID}
		rec.DuplicateCount = 0
		s.records[rec.DedupeKey] = &rec
		return true
	}

	current.DuplicateCount++
	current.SourceFiles = addSorted(current.SourceFiles, rec.SourceFile)
	current.SourceRowIDs = append(current.SourceRowIDs, rec.SourceRowID)

	s.backfill(current, rec, "name", &current.Name, rec.Name)
	s.backfill(current, rec, "roadAddress", &current.RoadAddress, rec.RoadAddress)
	s.backfill(current, rec, "lotAddress", &current.LotAddress, rec.LotAddress)
	s.backfill(current, rec, "openHours", &current.OpenHours, rec.OpenHours)
	s.noteConflict(current, rec, "phone", current.Phone, rec.Phone)

	return false
}

// backfill copies incoming into a blank field; a non-blank field is kept
func (s *Set) backfill(current *model.Record, rec model.Record, field string, dst *string, incoming string) {
	if isBlank(incoming) {
		return
	}
	if isBlank(*dst) {
		*dst = incoming
		return
	}
	s.noteConflict(current, rec, field, *dst, incoming)
}

func (s *Set) noteConflict(current *model.Record, rec model.Record, field, kept, incoming string) {
	if isBlank(kept) || isBlank(incoming) || kept == incoming {
		return
	}
	s.conflicts = append(s.conflicts, Conflict{
		DedupeKey:   current.DedupeKey,
		Field:       field,
		Kept:        kept,
		Incoming:    incoming,
		SourceFile:  rec.SourceFile,
		SourceRowID: rec.SourceRowID,
	})
}

// Get returns the merged record for a key
func (s *Set) Get(dedupeKey string) (model.Record, bool) {
	rec, ok := s.records[dedupeKey]
	if !ok {
		return model.Record{}, false
	}
	return *rec, true
}

// Len returns the number of distinct facilities
func (s *Set) Len() int {
	return len(s.records)
}

// Conflicts returns the disagreements seen so far, in merge order
func (s *Set) Conflicts() []Conflict {
	out := make([]Conflict, len(s.conflicts))
	copy(out, s.conflicts)
	return out
}

// Documents returns the merged records sorted by id
func (s *Set) Documents() []model.Record {
	docs := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		docs = append(docs, *rec)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].ID != docs[j].ID {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].DedupeKey < docs[j].DedupeKey
	})
	return docs
}

func addSorted(files []string, file string) []string {
	for _, f := range files {
		if f == file {
			return files
		}
	}
	files = append(files, file)
	sort.Strings(files)
	return files
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
