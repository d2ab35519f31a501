package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOrder(t *testing.T) {
	reg := Default()
	require.Equal(t, 3, reg.Len())

	var files []string
	for _, s := range reg.Schemas() {
		files = append(files, s.File)
	}
	assert.Equal(t, []string{"seoul.csv", "gyeonggi.csv", "korea.csv"}, files)
}

func TestDefaultSchemasAreValid(t *testing.T) {
	_, err := New(Default().Schemas()...)
	require.NoError(t, err)
}

func TestLookup(t *testing.T) {
	reg := Default()

	s, ok := reg.Lookup("korea.csv")
	require.True(t, ok)
	assert.Equal(t, "korea", s.Region)
	assert.Empty(t, s.SourceRowID, "national dataset has no row id column")
	assert.Equal(t, []string{"WGS84위도", "위도"}, s.Latitude)

	_, ok = reg.Lookup("busan.csv")
	assert.False(t, ok)
}

func TestSchemasReturnsCopy(t *testing.T) {
	reg := Default()
	schemas := reg.Schemas()
	schemas[0].File = "changed.csv"

	first := reg.Schemas()[0]
	assert.Equal(t, "seoul.csv", first.File)
}

func TestNewRejectsBadSchemas(t *testing.T) {
	coords := SourceSchema{Region: "r", File: "a.csv", Latitude: []string{"lat"}, Longitude: []string{"lng"}}

	tests := []struct {
		name    string
		schemas []SourceSchema
	}{
		{
			name:    "missing file",
			schemas: []SourceSchema{{Region: "r", Latitude: []string{"lat"}, Longitude: []string{"lng"}}},
		},
		{
			name:    "missing region",
			schemas: []SourceSchema{{File: "a.csv", Latitude: []string{"lat"}, Longitude: []string{"lng"}}},
		},
		{
			name:    "no coordinate columns",
			schemas: []SourceSchema{{Region: "r", File: "a.csv", Latitude: []string{"lat"}}},
		},
		{
			name:    "duplicate file",
			schemas: []SourceSchema{coords, coords},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.schemas...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchema))
		})
	}
}
