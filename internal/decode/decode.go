// Package decode turns uploaded byte buffers into UTF-8 text and row grids.
//
// Exported files from spreadsheet tools arrive in a mix of encodings: UTF-8
// with or without a BOM, UTF-16 with a BOM, and legacy Latin-1. Decoding is
// best-effort and never fails on unknown encodings; Latin-1 maps every byte to
// a code point, so it is a total fallback.
package decode

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Text detects the encoding of data, strips any BOM, and returns UTF-8 bytes
// along with the detected encoding name.
//
// Detection order: UTF-8 BOM, UTF-16 BOM (either endianness), valid UTF-8,
// Latin-1 fallback.
func Text(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], "utf-8-bom", nil
	}

	if len(data) >= 2 && (data[0] == 0xFF && data[1] == 0xFE || data[0] == 0xFE && data[1] == 0xFF) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, "", fmt.Errorf("utf-16 decode: %w", err)
		}
		return out, "utf-16", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("latin-1 decode: %w", err)
	}
	return out, "latin-1", nil
}

// Rows decodes data and reads it as comma-separated rows.
//
// Field counts are allowed to vary per row; quoting is lenient. Returns the
// raw rows without any header interpretation.
func Rows(data []byte) ([][]string, error) {
	text, _, err := Text(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}
		rows = append(rows, rec)
	}
}
