package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Dedupe key prefixes, strongest identity signal first
const (
	PrefixAddress = "coord_addr"
	PrefixName    = "coord_name"
	PrefixCoord   = "coord_only"
)

// DocIDLength is the number of hex characters kept from the key digest
const DocIDLength = 24

// coordinatePrecision is ~1.1m at the equator
const coordinatePrecision = 5

// Anything that is not an ASCII letter/digit, a Hangul compatibility jamo or
// a precomposed Hangul syllable
var reNonKey = regexp.MustCompile(`[^0-9a-zA-Z\x{3131}-\x{318E}\x{AC00}-\x{D7A3}]+`)

// NormalizeText lowercases and collapses whitespace so free text compares
// equal regardless of spacing. Pipes are treated as separators.
func NormalizeText(value string) string {
	s := norm.NFC.String(value)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", " ")
}

// KeyText reduces free text to the characters that carry identity
func KeyText(value string) string {
	return reNonKey.ReplaceAllString(NormalizeText(value), "")
}

// FormatCoordinate renders a coordinate rounded to key precision
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', coordinatePrecision, 64)
}

// DedupeKey builds the composite identity of a facility. Address wins over
// name; with neither, the rounded coordinates alone identify the record, which
// can fold unrelated neighbours together.
func DedupeKey(name, address string, lat, lng float64) string {
	latKey := FormatCoordinate(lat)
	lngKey := FormatCoordinate(lng)

	if addressKey := KeyText(address); addressKey != "" {
		return PrefixAddress + ":" + latKey + ":" + lngKey + ":" + addressKey
	}
	if nameKey := KeyText(name); nameKey != "" {
		return PrefixName + ":" + latKey + ":" + lngKey + ":" + nameKey
	}
	return PrefixCoord + ":" + latKey + ":" + lngKey
}

// DocID derives the document id from a dedupe key
func DocID(dedupeKey string) string {
	sum := sha1.Sum([]byte(dedupeKey))
	return hex.EncodeToString(sum[:])[:DocIDLength]
}
