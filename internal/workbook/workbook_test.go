package workbook

import (
	"testing"
)

// TestWriteOpenRoundTrip verifies a written grid reads back with the sheet
// name and cell values intact.
//
// Edge cases:
//   - the default "Sheet1" is renamed
//   - cell values are plain strings, no type coercion
func TestWriteOpenRoundTrip(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"userId", "gender"},
		{"1001", "F"},
		{"007", "2020-01-01"},
	}
	data, err := Write("Import Template", rows)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	sheets, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets, want 1", len(sheets))
	}
	if sheets[0].Name != "Import Template" {
		t.Fatalf("sheet name=%q, want Import Template", sheets[0].Name)
	}
	got := sheets[0].Rows
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for r := range rows {
		for c := range rows[r] {
			if got[r][c] != rows[r][c] {
				t.Fatalf("cell (%d,%d)=%q, want %q", r, c, got[r][c], rows[r][c])
			}
		}
	}
}

// TestWriteDefaultSheetName verifies writing under the default name skips the
// rename.
func TestWriteDefaultSheetName(t *testing.T) {
	t.Parallel()

	data, err := Write("Sheet1", [][]string{{"a"}})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	sheets, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "Sheet1" {
		t.Fatalf("sheets=%v, want one Sheet1", sheets)
	}
}

// TestOpenGarbage verifies non-workbook bytes fail with an error rather than
// panicking.
func TestOpenGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Open([]byte("not a workbook")); err == nil {
		t.Fatalf("Open accepted garbage bytes")
	}
}
