package decode

import (
	"bytes"
	"reflect"
	"testing"
)

// utf16le encodes an ASCII string as UTF-16LE with a BOM.
func utf16le(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, r := range s {
		out = append(out, byte(r), 0x00)
	}
	return out
}

// TestText verifies encoding detection and BOM stripping.
//
// Edge cases:
//   - UTF-8 BOM is stripped, not decoded into the text
//   - UTF-16 little-endian with a BOM decodes to plain UTF-8
//   - bytes invalid as UTF-8 fall back to Latin-1 and never fail
//   - empty input stays empty
func TestText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       []byte
		want     string
		wantName string
	}{
		{"plain utf-8", []byte("userId,gender"), "userId,gender", "utf-8"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("userId")...), "userId", "utf-8-bom"},
		{"utf-16 le", utf16le("userId,F"), "userId,F", "utf-16"},
		{"latin-1", []byte{'J', 0xF6, 'r', 'g'}, "Jörg", "latin-1"},
		{"empty", nil, "", "utf-8"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, enc, err := Text(c.in)
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if string(got) != c.want {
				t.Fatalf("Text=%q, want %q", got, c.want)
			}
			if enc != c.wantName {
				t.Fatalf("encoding=%q, want %q", enc, c.wantName)
			}
		})
	}
}

// TestTextUTF16BigEndian verifies the big-endian BOM path.
func TestTextUTF16BigEndian(t *testing.T) {
	t.Parallel()

	in := []byte{0xFE, 0xFF, 0x00, 'A', 0x00, 'B'}
	got, enc, err := Text(in)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if string(got) != "AB" || enc != "utf-16" {
		t.Fatalf("Text=%q enc=%q, want AB utf-16", got, enc)
	}
}

// TestRows verifies CSV reading on decoded text.
//
// Edge cases:
//   - ragged rows are allowed
//   - quotes are lenient
//   - a BOM before the header does not leak into the first field
func TestRows(t *testing.T) {
	t.Parallel()

	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b,c\n1,2\n\"x\",y,z,extra\n")...)
	got, err := Rows(in)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	want := [][]string{
		{"a", "b", "c"},
		{"1", "2"},
		{"x", "y", "z", "extra"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rows=%v, want %v", got, want)
	}
	if bytes.Contains([]byte(got[0][0]), []byte{0xEF}) {
		t.Fatalf("BOM leaked into first field: %q", got[0][0])
	}
}

// TestRowsEmpty verifies empty input yields no rows and no error.
func TestRowsEmpty(t *testing.T) {
	t.Parallel()

	got, err := Rows(nil)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if got != nil {
		t.Fatalf("Rows=%v, want nil", got)
	}
}
