package csv

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

// bomMarkers are stripped verbatim from the start of UTF-8 text: the BOM
// itself, its byte-swapped code point, and the BOM bytes read as Latin-1.
var bomMarkers = []string{utf8BOM, "\uFFFE", "\u00EF\u00BB\u00BF"}

// StripBOM removes a leading byte-order marker from text. Text carrying a
// UTF-16 or UTF-32 byte-order mark is decoded to UTF-8 first; the mark is
// consumed by the decoder.
func StripBOM(text string) string {
	if enc := wideEncoding(text); enc != nil {
		if out, _, err := transform.String(enc.NewDecoder(), text); err == nil {
			return out
		}
	}
	for _, m := range bomMarkers {
		if strings.HasPrefix(text, m) {
			return text[len(m):]
		}
	}
	return text
}

// wideEncoding picks a decoder from the byte-order mark of a UTF-16 or
// UTF-32 text. UTF-32 is checked first because its little-endian mark starts
// with the UTF-16 one.
func wideEncoding(text string) encoding.Encoding {
	switch {
	case strings.HasPrefix(text, "\x00\x00\xFE\xFF"):
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case strings.HasPrefix(text, "\xFF\xFE\x00\x00"):
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case strings.HasPrefix(text, "\xFE\xFF"), strings.HasPrefix(text, "\xFF\xFE"):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return nil
}

// StripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func StripHeaderBOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	return headers
}
