package picklist

import (
	"strings"

	"enrich/internal/schema"
	"enrich/internal/workbook"
)

// DataSheetSuffix marks workbook sheets that carry reference data. All other
// sheets are ignored.
const DataSheetSuffix = "(Data)"

// ParseWorkbook parses every "(Data)" sheet of a workbook into one Parsed
// source. Within a single workbook the first sheet defining a table name wins.
//
// Sheet layout (0-indexed rows):
//
//	row 0 — technical column names (left region); table display names aligned
//	        over each "Code" column (right region)
//	row 1 — human labels (left); literal "Code"/"Label" markers (right)
//	row 2+ — data values (left); code/label pairs (right)
//
// The left region ends at the first column whose row-1 cell is "Code"
// (case-insensitive). Auto-mapping compares each left column's row-1 label
// against each table's display name, case-insensitively.
func ParseWorkbook(sheets []workbook.Sheet) Parsed {
	out := Parsed{
		Tables:  make(map[string]*Table),
		AutoMap: make(map[string]string),
	}
	for _, sh := range sheets {
		if !strings.HasSuffix(sh.Name, DataSheetSuffix) {
			continue
		}
		parseDataSheet(sh.Rows, &out)
	}
	return out
}

func parseDataSheet(rows [][]string, out *Parsed) {
	if len(rows) < 2 {
		return
	}
	row0, row1 := rows[0], rows[1]

	// Right region: each "Code" marker in row 1 starts one table; its display
	// name sits directly above in row 0.
	type position struct {
		col  int
		name string
	}
	var tables []position
	for c, v := range row1 {
		if !strings.EqualFold(strings.TrimSpace(v), "Code") {
			continue
		}
		name := cell(row0, c)
		if name == "" {
			continue
		}
		tables = append(tables, position{col: c, name: name})
	}
	if len(tables) == 0 {
		return
	}

	// Left region: data columns with both a technical name and a human label.
	firstCode := tables[0].col
	type leftCol struct {
		col   int
		label string
	}
	var left []leftCol
	for c := 0; c < firstCode; c++ {
		if cell(row0, c) == "" {
			continue
		}
		if l := cell(row1, c); l != "" {
			left = append(left, leftCol{col: c, label: l})
		}
	}

	sheetTables := make(map[string]*Table, len(tables))
	for _, pos := range tables {
		t := &Table{Name: pos.name}
		for _, row := range rows[2:] {
			code := cell(row, pos.col)
			if code == "" {
				continue
			}
			t.Values = append(t.Values, Value{Code: code, Label: cell(row, pos.col+1)})
		}
		if len(t.Values) == 0 {
			continue
		}
		sheetTables[pos.name] = t
		if _, ok := out.Tables[pos.name]; !ok {
			out.Tables[pos.name] = t
		}
	}

	byLower := make(map[string]string, len(sheetTables))
	for name := range sheetTables {
		byLower[strings.ToLower(name)] = name
	}
	for _, lc := range left {
		tech := cell(row0, lc.col)
		if tech == "" {
			continue
		}
		matched, ok := byLower[strings.ToLower(lc.label)]
		if !ok {
			continue
		}
		norm := schema.Normalize(tech)
		if norm == "" {
			continue
		}
		if _, exists := out.AutoMap[norm]; !exists {
			out.AutoMap[norm] = matched
		}
	}
}

func cell(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}
