package transform

import (
	"strings"

	"enrich/internal/match"
	"enrich/internal/picklist"
	"enrich/internal/schema"
	"enrich/internal/template"
)

// Candidate is one picklist-candidate column found across the processing set.
// Each unique normalized name appears once, attributed to the first template
// containing it. Identity and operation columns are never candidates.
type Candidate struct {
	Template   string
	Column     string
	Normalized string
}

// Candidates scans the templates for columns whose final friendly type would
// be picklist, deduplicated by normalized name.
func Candidates(templates []*template.Template, ix *schema.Index, kw Keywords) []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate

	for _, t := range templates {
		m := match.Best(schema.NormalizeSet(t.Columns), ix, "")
		for _, col := range t.Columns {
			norm := schema.Normalize(col)
			if _, dup := seen[norm]; dup {
				continue
			}
			if _, id := identityLabels[norm]; id || norm == operationColumn {
				continue
			}

			ft := ""
			if p := match.Resolve(norm, m.EntityType, ix); p != nil {
				ft = schema.FriendlyType(p.EdmType)
			}
			if ft == schema.TypeString && kw.PicklistName(norm) {
				ft = schema.TypePicklist
			}
			if ft != schema.TypePicklist {
				continue
			}

			seen[norm] = struct{}{}
			out = append(out, Candidate{Template: t.Name, Column: col, Normalized: norm})
		}
	}
	return out
}

// AutoAssign derives resolved picklist assignments for the candidates.
//
// Per candidate, the reference store's auto-mapped table wins and contributes
// its labels; when no table is mapped, distinct values from the templates'
// own data rows are used. Candidates with neither source are left out.
// The returned map is in the shape Options.Assignments expects.
func AutoAssign(
	cands []Candidate,
	store *picklist.Store,
	templates []*template.Template,
) map[string]string {
	out := make(map[string]string, len(cands))
	for _, c := range cands {
		var vals []string
		if store != nil {
			if name, ok := store.AutoMap[c.Normalized]; ok {
				if t, ok := store.Tables[name]; ok {
					vals = t.Labels()
				}
			}
		}
		if len(vals) == 0 {
			vals = TemplateDataValues(c.Normalized, templates, MaxDataValues)
		}
		if len(vals) == 0 {
			continue
		}
		out[c.Normalized] = strings.Join(vals, ", ")
	}
	return out
}

// TemplateDataValues collects distinct non-empty data values for a normalized
// column across all templates that carry it, capped at limit.
func TemplateDataValues(norm string, templates []*template.Template, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range templates {
		colIdx := -1
		for i, col := range t.Columns {
			if schema.Normalize(col) == norm {
				colIdx = i
				break
			}
		}
		if colIdx < 0 {
			continue
		}
		for _, row := range t.DataRows {
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
				return out
			}
		}
	}
	return out
}

// MissingIdentity returns the names of templates lacking both identity
// columns. Every template is expected to carry at least one.
func MissingIdentity(templates []*template.Template) []string {
	var out []string
	for _, t := range templates {
		found := false
		for _, col := range t.Columns {
			if _, ok := identityLabels[schema.Normalize(col)]; ok {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t.Name)
		}
	}
	return out
}

// HasOperation returns the names of templates containing an operation column.
func HasOperation(templates []*template.Template) []string {
	var out []string
	for _, t := range templates {
		for _, col := range t.Columns {
			if schema.Normalize(col) == operationColumn {
				out = append(out, t.Name)
				break
			}
		}
	}
	return out
}
