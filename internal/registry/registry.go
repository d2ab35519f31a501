package registry

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is returned when a source schema cannot be used for import
var ErrInvalidSchema = errors.New("invalid source schema")

// SourceSchema maps the logical restroom fields onto the column names used by
// one regional CSV file. Each list is tried in order; an empty list means the
// source does not carry that field.
type SourceSchema struct {
	Region      string   `yaml:"region"`
	File        string   `yaml:"file"`
	Name        []string `yaml:"name"`
	RoadAddress []string `yaml:"road_address"`
	LotAddress  []string `yaml:"lot_address"`
	Latitude    []string `yaml:"latitude"`
	Longitude   []string `yaml:"longitude"`
	Phone       []string `yaml:"phone"`
	Category    []string `yaml:"category"`
	OpenHours   []string `yaml:"open_hours"`
	Ownership   []string `yaml:"ownership"`
	District    []string `yaml:"district"`
	SourceRowID []string `yaml:"source_row_id"`
}

// Registry is the ordered set of sources that make up one dataset build
type Registry struct {
	schemas []SourceSchema
}

// New creates a registry from schemas, keeping their order
func New(schemas ...SourceSchema) (Registry, error) {
	seen := make(map[string]bool)
	for i, s := range schemas {
		if s.File == "" {
			return Registry{}, fmt.Errorf("%w: entry %d has no file", ErrInvalidSchema, i)
		}
		if s.Region == "" {
			return Registry{}, fmt.Errorf("%w: %s has no region", ErrInvalidSchema, s.File)
		}
		if len(s.Latitude) == 0 || len(s.Longitude) == 0 {
			return Registry{}, fmt.Errorf("%w: %s has no coordinate columns", ErrInvalidSchema, s.File)
		}
		if seen[s.File] {
			return Registry{}, fmt.Errorf("%w: %s listed twice", ErrInvalidSchema, s.File)
		}
		seen[s.File] = true
	}

	copied := make([]SourceSchema, len(schemas))
	copy(copied, schemas)
	return Registry{schemas: copied}, nil
}

// Schemas returns the schemas in build order
func (r Registry) Schemas() []SourceSchema {
	out := make([]SourceSchema, len(r.schemas))
	copy(out, r.schemas)
	return out
}

// Len returns the number of registered sources
func (r Registry) Len() int {
	return len(r.schemas)
}

// Lookup finds the schema for a source file
func (r Registry) Lookup(file string) (SourceSchema, bool) {
	for _, s := range r.schemas {
		if s.File == file {
			return s, true
		}
	}
	return SourceSchema{}, false
}

// Default returns the built-in regional sources: Seoul city, Gyeonggi province
// and the national public restroom dataset, in that order
func Default() Registry {
	return Registry{schemas: []SourceSchema{
		{
			Region:      "seoul",
			File:        "seoul.csv",
			Name:        []string{"건물명", "비고"},
			RoadAddress: []string{"도로명주소"},
			LotAddress:  []string{"지번주소"},
			Latitude:    []string{"y 좌표"},
			Longitude:   []string{"x 좌표"},
			Phone:       []string{"전화번호"},
			Category:    []string{"유형", "소재지 용도"},
			OpenHours:   []string{"개방시간"},
			Ownership:   []string{"소재지 용도"},
			District:    []string{"구 명칭"},
			SourceRowID: []string{"연번"},
		},
		{
			Region:      "gyeonggi",
			File:        "gyeonggi.csv",
			Name:        []string{"화장실명"},
			RoadAddress: []string{"소재지도로명주소"},
			LotAddress:  []string{"소재지지번주소"},
			Latitude:    []string{"위도", "WGS84위도"},
			Longitude:   []string{"경도", "WGS84경도"},
			Phone:       []string{"전화번호"},
			Category:    []string{"구분"},
			OpenHours:   []string{"개방시간", "개방시간상세"},
			Ownership:   []string{"화장실소유구분", "화장실소유구분명"},
			District:    []string{"관리기관명"},
			SourceRowID: []string{"데이터기준일자"},
		},
		{
			Region:      "korea",
			File:        "korea.csv",
			Name:        []string{"화장실명"},
			RoadAddress: []string{"소재지도로명주소"},
			LotAddress:  []string{"소재지지번주소"},
			Latitude:    []string{"WGS84위도", "위도"},
			Longitude:   []string{"WGS84경도", "경도"},
			Phone:       []string{"전화번호"},
			Category:    []string{"구분명", "구분"},
			OpenHours:   []string{"개방시간", "개방시간상세"},
			Ownership:   []string{"화장실소유구분명", "화장실소유구분"},
			District:    []string{"관리기관명"},
		},
	}}
}
