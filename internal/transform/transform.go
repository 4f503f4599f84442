// Package transform assembles the enriched per-column metadata for a
// template: entity matching, property resolution, picklist classification,
// deterministic overrides, and the fixed six-row output grid.
package transform

import (
	"strings"

	"enrich/internal/match"
	"enrich/internal/schema"
	"enrich/internal/template"
)

// Identity columns carry enforced metadata regardless of schema content.
const (
	identityUserID   = "userid"
	identityPersonID = "personidexternal"
	operationColumn  = "operation"

	identityMaxLength = 100
	dateTimeMaxLength = 10
)

var identityLabels = map[string]string{
	identityUserID:   "User ID",
	identityPersonID: "Person ID External",
}

// MaxDataValues caps how many distinct values are read from template data
// rows for one picklist column.
const MaxDataValues = 20

// ColumnMetadata is the resolved record for one template column. Immutable
// once produced.
type ColumnMetadata struct {
	ColumnName string
	Label      string
	// FriendlyType is one of the schema friendly names, a verbatim unmapped
	// raw type, or "" when no definition was found.
	FriendlyType string
	Mandatory    bool
	// MaxLength is 0 when absent.
	MaxLength      int
	PicklistValues []string
}

// Unresolved reports whether no schema definition was found for this column.
// This is the one silently-degraded outcome that must be surfaced as a
// warning: the label fell back to the raw column name and no type was set.
func (c *ColumnMetadata) Unresolved() bool {
	return c.FriendlyType == "" && c.Label == c.ColumnName
}

// Options control one transformation run.
type Options struct {
	// Country prefers country-specific entity variants during matching.
	Country string
	// SkipOperation forces pass-through metadata for the operation column.
	SkipOperation bool
	// Assignments maps a normalized column name to its resolved picklist
	// values as a comma-joined string (externally supplied, e.g. from a saved
	// configuration). Takes priority over template data extraction.
	Assignments map[string]string
	// Keywords defaults to DefaultKeywords when zero.
	Keywords Keywords
}

// Result is the transformation outcome for one template.
type Result struct {
	Template string
	// EntityType is the matched entity name, or "" when nothing matched.
	EntityType string
	Columns    []ColumnMetadata
	// Unresolved lists columns with no schema definition anywhere, in column
	// order. Surfaced as warnings by the caller.
	Unresolved []string
}

// Template transforms one template against the index.
//
// No failure mode exists here: a template with no matching entity degrades to
// global fallback lookups, and a column with no definition at all degrades to
// a raw-name record reported in Result.Unresolved.
func Template(t *template.Template, ix *schema.Index, opts Options) Result {
	kw := opts.Keywords
	if len(kw.Picklist) == 0 && len(kw.NonPicklist) == 0 && len(kw.Duration) == 0 {
		kw = DefaultKeywords()
	}

	m := match.Best(schema.NormalizeSet(t.Columns), ix, opts.Country)
	res := Result{Template: t.Name, EntityType: m.EntityType}

	for i, col := range t.Columns {
		norm := schema.Normalize(col)
		cm := resolveColumn(col, norm, i, t, ix, m.EntityType, kw, opts)
		if cm.Unresolved() {
			res.Unresolved = append(res.Unresolved, col)
		}
		res.Columns = append(res.Columns, cm)
	}
	return res
}

func resolveColumn(
	col, norm string,
	idx int,
	t *template.Template,
	ix *schema.Index,
	entity string,
	kw Keywords,
	opts Options,
) ColumnMetadata {
	// Identity columns take precedence over all schema lookup.
	if label, ok := identityLabels[norm]; ok {
		return ColumnMetadata{
			ColumnName:   col,
			Label:        label,
			FriendlyType: schema.TypeString,
			Mandatory:    true,
			MaxLength:    identityMaxLength,
		}
	}

	if norm == operationColumn && opts.SkipOperation {
		return ColumnMetadata{
			ColumnName:   col,
			Label:        "Operation",
			FriendlyType: schema.TypeString,
		}
	}

	cm := ColumnMetadata{ColumnName: col}

	p := match.Resolve(norm, entity, ix)
	if p == nil {
		cm.Label = col
		return cm
	}

	cm.Label = p.DisplayLabel()

	ft := schema.FriendlyType(p.EdmType)
	if ft == schema.TypeString && kw.PicklistName(norm) {
		ft = schema.TypePicklist
	}
	cm.FriendlyType = ft

	// Duration columns are mandatory only when the schema says so explicitly;
	// for everything else the schema's required flag stands.
	cm.Mandatory = p.Required

	switch ft {
	case schema.TypeDate, schema.TypeTime:
		cm.MaxLength = dateTimeMaxLength
	default:
		cm.MaxLength = p.MaxLength
	}

	if ft == schema.TypePicklist {
		cm.PicklistValues = picklistValues(norm, idx, t, opts)
	}
	return cm
}

// picklistValues applies the priority order: externally resolved assignment,
// then distinct values from the template's own data rows, then nothing.
func picklistValues(norm string, colIdx int, t *template.Template, opts Options) []string {
	if joined, ok := opts.Assignments[norm]; ok {
		if vals := SplitValues(joined); len(vals) > 0 {
			return vals
		}
	}
	return dataValues(t.DataRows, colIdx, MaxDataValues)
}

// dataValues returns distinct non-empty values at colIdx across rows, in
// order of first appearance, capped at limit.
func dataValues(rows [][]string, colIdx, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		if colIdx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[colIdx])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SplitValues splits a comma-joined assignment string into distinct trimmed
// values, preserving first-appearance order.
func SplitValues(joined string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(joined, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
