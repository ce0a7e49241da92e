package core

// decode.go normalizes the byte encoding of an upload before CSV parsing.
//
// Spreadsheet exports arrive in a handful of encodings:
//
//   - UTF-8 with a BOM (Excel "CSV UTF-8")
//   - UTF-16 with a BOM (Excel "Unicode Text")
//   - Windows-1252 (legacy Excel "CSV"), common for names with ñ or é
//
// DecodeInput converts all of them to plain UTF-8 so the parser only ever
// sees one encoding.

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by DecodeInput.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-bom"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeInput detects the encoding of data, strips any BOM, and returns UTF-8
// bytes along with the detected encoding name.
func DecodeInput(data []byte) ([]byte, string, error) {
	switch {
	case len(data) == 0:
		return data, EncodingUTF8, nil

	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], EncodingUTF8BOM, nil

	case bytes.HasPrefix(data, bomUTF16LE):
		out, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
		return out, EncodingUTF16LE, err

	case bytes.HasPrefix(data, bomUTF16BE):
		out, err := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
		return out, EncodingUTF16BE, err

	case utf8.Valid(data):
		return data, EncodingUTF8, nil
	}

	out, err := decodeWith(charmap.Windows1252, data)
	return out, EncodingWindows1252, err
}

// decodeWith runs data through enc's decoder.
func decodeWith(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return out, nil
}
