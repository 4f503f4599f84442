// Package template models an uploaded template file: row 1 is the column
// identifiers to be matched against the schema, row 2 is optional human
// labels, rows 3+ are data rows used for picklist value extraction.
package template

import (
	"fmt"
	"strings"

	"enrich/internal/decode"
	"enrich/internal/workbook"
)

// Template is one decoded template file.
//
// LabelRow and every DataRows entry are aligned to Columns: shorter source
// rows are padded with empty strings and longer ones truncated.
type Template struct {
	Name     string
	Columns  []string
	LabelRow []string
	DataRows [][]string
}

// InvalidTemplateError reports a template that cannot enter the processing
// set: unreadable bytes or no columns at all. It is local to one template;
// callers exclude the file and continue.
type InvalidTemplateError struct {
	Name string
	Err  error
}

func (e *InvalidTemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid template %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("invalid template %q: no columns", e.Name)
}

func (e *InvalidTemplateError) Unwrap() error { return e.Err }

// FromRows builds a Template from already-decoded rows.
func FromRows(name string, rows [][]string) (*Template, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &InvalidTemplateError{Name: name}
	}

	cols := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		cols[i] = strings.TrimSpace(c)
	}

	t := &Template{Name: name, Columns: cols}
	if len(rows) > 1 {
		t.LabelRow = align(rows[1], len(cols))
	}
	for _, row := range rows[min(2, len(rows)):] {
		t.DataRows = append(t.DataRows, align(row, len(cols)))
	}
	return t, nil
}

// FromCSV decodes CSV bytes (any supported encoding) into a Template.
func FromCSV(name string, data []byte) (*Template, error) {
	rows, err := decode.Rows(data)
	if err != nil {
		return nil, &InvalidTemplateError{Name: name, Err: err}
	}
	return FromRows(name, rows)
}

// FromWorkbook decodes workbook bytes into a Template using the first sheet.
func FromWorkbook(name string, data []byte) (*Template, error) {
	sheets, err := workbook.Open(data)
	if err != nil {
		return nil, &InvalidTemplateError{Name: name, Err: err}
	}
	if len(sheets) == 0 {
		return nil, &InvalidTemplateError{Name: name, Err: fmt.Errorf("workbook has no sheets")}
	}
	return FromRows(name, sheets[0].Rows)
}

func align(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
