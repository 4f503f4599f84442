package transform

import (
	"strconv"
	"strings"
)

// GridRowLabels are the six conceptual rows of the enriched output, in the
// fixed order the surrounding layer serializes them.
var GridRowLabels = [6]string{
	"Column Name",
	"Column Label",
	"Type",
	"Mandatory",
	"Max Length",
	"Picklist Values",
}

// Grid renders the resolved columns as the six-row output grid: one row of
// string-formatted values per ColumnMetadata field, columns in template
// order. Booleans render as literal "true"/"false", absent values as the
// empty string. No header row, no row-label column.
func Grid(columns []ColumnMetadata) [][]string {
	g := make([][]string, len(GridRowLabels))
	for i := range g {
		g[i] = make([]string, len(columns))
	}
	for c, cm := range columns {
		g[0][c] = cm.ColumnName
		g[1][c] = cm.Label
		g[2][c] = cm.FriendlyType
		g[3][c] = strconv.FormatBool(cm.Mandatory)
		if cm.MaxLength > 0 {
			g[4][c] = strconv.Itoa(cm.MaxLength)
		}
		g[5][c] = strings.Join(cm.PicklistValues, ", ")
	}
	return g
}
