package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  City Hall  WC ", "city hall wc"},
		{"A|B", "a b"},
		{"Tab\tand\nnewline", "tab and newline"},
		{"서울  시청", "서울 시청"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestKeyText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii punctuation removed", "1 Main St.", "1mainst"},
		{"case folded", "CITY-HALL", "cityhall"},
		{"hangul kept", "서울특별시 중구 세종대로 110", "서울특별시중구세종대로110"},
		{"compatibility jamo kept", "ㄱㄴ 화장실", "ㄱㄴ화장실"},
		{"brackets and pipes removed", "(공원)|화장실", "공원화장실"},
		{"other scripts dropped", "東京 station", "station"},
		{"only punctuation", " - , . ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyText(tt.input))
		})
	}
}

func TestKeyTextComposesDecomposedHangul(t *testing.T) {
	// "한" as conjoining jamo U+1112 U+1161 U+11AB
	decomposed := "\u1112\u1161\u11ab"
	assert.Equal(t, "한", KeyText(decomposed))
}

func TestDedupeKeyPriority(t *testing.T) {
	tests := []struct {
		name    string
		facName string
		address string
		want    string
	}{
		{
			name:    "address wins",
			facName: "City Hall WC",
			address: "1 Main St",
			want:    "coord_addr:37.12345:127.54321:1mainst",
		},
		{
			name:    "name when address blank",
			facName: "City Hall WC",
			address: "  ",
			want:    "coord_name:37.12345:127.54321:cityhallwc",
		},
		{
			name:    "name when address is punctuation only",
			facName: "Park",
			address: "-",
			want:    "coord_name:37.12345:127.54321:park",
		},
		{
			name: "coordinates only",
			want: "coord_only:37.12345:127.54321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeKey(tt.facName, tt.address, 37.12345, 127.54321))
		})
	}
}

func TestDedupeKeyRoundsCoordinates(t *testing.T) {
	a := DedupeKey("", "1 Main St", 37.12345, 127.54321)
	b := DedupeKey("", "1 main st ", 37.123451, 127.543209)
	assert.Equal(t, a, b)

	c := DedupeKey("", "1 Main St", 37.12346, 127.54321)
	assert.NotEqual(t, a, c)
}

func TestDedupeKeyIgnoresTextNoise(t *testing.T) {
	a := DedupeKey("", "서울 중구 세종대로 110", 37.5, 127.0)
	b := DedupeKey("", "서울  중구, 세종대로-110", 37.5, 127.0)
	assert.Equal(t, a, b)
	assert.Equal(t, DocID(a), DocID(b))
}

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "37.00000", FormatCoordinate(37))
	assert.Equal(t, "-33.86882", FormatCoordinate(-33.868820))
	assert.Equal(t, "127.12346", FormatCoordinate(127.123456))
}

func TestDocID(t *testing.T) {
	key := "coord_addr:37.12345:127.54321:1mainst"
	id := DocID(key)

	sum := sha1.Sum([]byte(key))
	assert.Equal(t, hex.EncodeToString(sum[:])[:24], id)
	assert.Len(t, id, DocIDLength)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}$`), id)
	assert.Equal(t, id, DocID(key), "id must be stable")
	assert.NotEqual(t, id, DocID(key+"x"))
}
