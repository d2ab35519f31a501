package csvsource

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
)

// ErrUndecodable is returned when no configured encoding can decode a source
var ErrUndecodable = errors.New("unable to decode source")

// DefaultEncodings is the order in which regional exports are tried. Korean
// open-data portals publish UTF-8 (often with a BOM) or CP949.
var DefaultEncodings = []string{"utf-8", "cp949", "euc-kr"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CP949 is a superset of EUC-KR and is what x/text implements as EUC-KR
var legacyKorean = map[string]encoding.Encoding{
	"cp949":          korean.EUCKR,
	"euc-kr":         korean.EUCKR,
	"euckr":          korean.EUCKR,
	"uhc":            korean.EUCKR,
	"ks_c_5601-1987": korean.EUCKR,
}

// Decode converts raw file bytes to text using the first encoding that
// decodes cleanly. It returns the text and the encoding that was used.
func Decode(raw []byte, encodings []string) (string, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	var lastErr error
	for _, name := range encodings {
		text, err := decodeAs(raw, name)
		if err == nil {
			return text, name, nil
		}
		lastErr = err
	}
	return "", "", fmt.Errorf("%w: tried %s: %v", ErrUndecodable, strings.Join(encodings, ", "), lastErr)
}

func decodeAs(raw []byte, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "utf-8" || key == "utf8" || key == "utf-8-sig" {
		body := bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(body) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(body), nil
	}

	enc, ok := legacyKorean[key]
	if !ok {
		var err error
		enc, err = htmlindex.Get(key)
		if err != nil {
			return "", fmt.Errorf("unknown encoding %q: %w", name, err)
		}
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", name, err)
	}
	// x/text substitutes U+FFFD for byte sequences it cannot map
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("decode as %s: invalid byte sequence", name)
	}
	return string(bytes.TrimPrefix(out, utf8BOM)), nil
}
