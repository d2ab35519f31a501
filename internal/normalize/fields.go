package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/mr30303/taxiDriver/internal/identity"
	"github.com/mr30303/taxiDriver/internal/model"
)

// Markers searched in the combined category/ownership text
var (
	privateMarkers = []string{"민간", "private"}
	publicMarkers  = []string{"공중", "공공", "public"}
)

// FirstNonEmpty returns the first non-blank value among the candidate columns
func FirstNonEmpty(row model.Row, keys []string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(row[key]); value != "" {
			return value
		}
	}
	return ""
}

// ParseCoordinate parses a decimal degree value, tolerating thousands
// separators. Blank or unparseable input yields false.
func ParseCoordinate(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ValidLatLng reports whether both coordinates are within WGS84 bounds
func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ComposeOpenHours joins every distinct opening-hours column in schema order
func ComposeOpenHours(row model.Row, keys []string) string {
	var values []string
	seen := make(map[string]bool)
	for _, key := range keys {
		value := strings.Trim(strings.TrimSpace(row[key]), "|")
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return strings.Join(values, " / ")
}

// ClassifyType maps category and ownership text to a restroom type.
// A private marker takes precedence over a public one.
func ClassifyType(category, ownership string) string {
	text := identity.NormalizeText(category + " " + ownership)
	if containsAny(text, privateMarkers) {
		return model.TypePrivate
	}
	if containsAny(text, publicMarkers) {
		return model.TypePublic
	}
	return model.TypeOpen
}

// Description builds the human readable summary shown on the map
func Description(name, address, openHours string) string {
	var parts []string
	if name != "" {
		parts = append(parts, name)
	}
	if address != "" {
		parts = append(parts, address)
	}
	if openHours != "" {
		parts = append(parts, "open: "+openHours)
	}
	if len(parts) == 0 {
		return "restroom"
	}
	return strings.Join(parts, " | ")
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
