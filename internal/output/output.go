// Package output serializes enriched grids into downloadable artifacts:
// CSV with a UTF-8 BOM for spreadsheet compatibility, XLSX workbooks, and a
// zip bundle when a run produces several files.
package output

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"enrich/internal/workbook"
)

// EnrichedName derives the output filename for a template, e.g.
// "EmpJob.csv" → "EmpJob_enriched.csv".
func EnrichedName(templateName, format string) string {
	base := strings.TrimSuffix(filepath.Base(templateName), filepath.Ext(templateName))
	return base + "_enriched." + format
}

// CSVBytes renders a grid as CSV bytes prefixed with a UTF-8 BOM.
func CSVBytes(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	for _, row := range grid {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXBytes renders a grid as a single-sheet workbook.
func XLSXBytes(grid [][]string) ([]byte, error) {
	return workbook.Write("Import Template", grid)
}

// File is one named artifact for bundling.
type File struct {
	Name string
	Data []byte
}

// ZipBytes bundles files into a single zip archive, in order.
func ZipBytes(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("zip write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}
