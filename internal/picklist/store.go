// Package picklist parses and merges the external reference tables that carry
// enumerated values. The schema dictionary does not contain picklist option
// values, so they come from reference files: simple two-column CSVs (one table
// per file) or workbook "(Data)" sheets holding several tables side by side.
package picklist

import "fmt"

// Value is one (code, label) pair. Codes are unique within a table.
type Value struct {
	Code  string
	Label string
}

// Table is a named set of enumerated values, in source order.
type Table struct {
	Name   string
	Values []Value
}

// Labels returns the non-empty labels in value order.
func (t *Table) Labels() []string {
	out := make([]string, 0, len(t.Values))
	for _, v := range t.Values {
		if v.Label != "" {
			out = append(out, v.Label)
		}
	}
	return out
}

// Parsed is the outcome of parsing one reference source (a CSV file or a
// whole workbook): its tables plus any column→table auto-mapping derived from
// sheet layout.
type Parsed struct {
	Tables  map[string]*Table
	AutoMap map[string]string
}

// Store is the merged view over every uploaded reference source. Read-only
// after Merge; safe to share across concurrent transformations.
type Store struct {
	// Tables maps table name to its merged value set.
	Tables map[string]*Table
	// AutoMap maps a normalized column name to the table auto-assigned to it.
	AutoMap map[string]string
}

// Merge combines parsed sources in upload order.
//
// Per table name, value sets are unioned by code with the first source of a
// given code winning; new codes from later sources are appended in their own
// order. Per normalized column, the first source providing an auto-map entry
// wins. Tables that end up with no values are dropped.
func Merge(parts ...Parsed) *Store {
	s := &Store{
		Tables:  make(map[string]*Table),
		AutoMap: make(map[string]string),
	}

	for _, part := range parts {
		for name, t := range part.Tables {
			if len(t.Values) == 0 {
				continue
			}
			dst, ok := s.Tables[name]
			if !ok {
				dst = &Table{Name: name}
				s.Tables[name] = dst
			}
			seen := make(map[string]struct{}, len(dst.Values))
			for _, v := range dst.Values {
				seen[v.Code] = struct{}{}
			}
			for _, v := range t.Values {
				if _, dup := seen[v.Code]; dup {
					continue
				}
				seen[v.Code] = struct{}{}
				dst.Values = append(dst.Values, v)
			}
		}
		for col, name := range part.AutoMap {
			if _, ok := s.AutoMap[col]; !ok {
				s.AutoMap[col] = name
			}
		}
	}
	return s
}

// MalformedReferenceError reports that one reference file could not be
// parsed. It is local to that file: callers skip the file and continue with
// the remaining sources.
type MalformedReferenceError struct {
	File string
	Err  error
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed reference file %q: %v", e.File, e.Err)
}

func (e *MalformedReferenceError) Unwrap() error { return e.Err }
