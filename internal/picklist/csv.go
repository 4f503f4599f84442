package picklist

import (
	"path/filepath"
	"strings"

	"enrich/internal/decode"
)

// headerTokens are first-cell values that identify a leading header row in a
// reference CSV. Comparison is case-insensitive; anything else is data.
var headerTokens = map[string]struct{}{
	"code":         {},
	"id":           {},
	"value":        {},
	"key":          {},
	"externalcode": {},
}

// ParseCSV parses a two-column (code, label) reference CSV. The table name is
// the filename stem. A leading header row is skipped only when its first cell
// is a recognized header token. Rows with an empty code are skipped.
//
// Errors:
//   - Returns *MalformedReferenceError when the bytes cannot be read as CSV.
func ParseCSV(data []byte, filename string) (*Table, error) {
	rows, err := decode.Rows(data)
	if err != nil {
		return nil, &MalformedReferenceError{File: filename, Err: err}
	}

	name := strings.TrimSpace(stem(filename))
	if name == "" {
		name = "Picklist"
	}
	t := &Table{Name: name}

	start := 0
	if len(rows) > 0 && len(rows[0]) > 0 {
		first := strings.ToLower(strings.TrimSpace(rows[0][0]))
		if _, ok := headerTokens[first]; ok {
			start = 1
		}
	}

	for _, row := range rows[min(start, len(rows)):] {
		if len(row) == 0 {
			continue
		}
		code := strings.TrimSpace(row[0])
		if code == "" {
			continue
		}
		label := ""
		if len(row) > 1 {
			label = strings.TrimSpace(row[1])
		}
		t.Values = append(t.Values, Value{Code: code, Label: label})
	}
	return t, nil
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
