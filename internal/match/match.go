// Package match selects the schema entity that best fits a template's column
// set and resolves per-column property definitions against the index.
package match

import (
	"strings"

	"enrich/internal/schema"
)

// CountryCodes are the ISO codes that appear as entity-name suffixes for
// country-specific variants (e.g. "EmpJobGBR").
var CountryCodes = []string{
	"GBR", "USA", "DEU", "FRA", "AUS", "CAN", "JPN", "NLD", "ESP", "ITA",
	"BRA", "MEX", "IND", "SGP", "ZAF", "NZL", "ARE", "KWT", "PER", "SAU",
	"CHN", "HKG", "KOR", "MYS", "THA", "PHL", "IDN", "COL", "CHL", "ARG",
	"POL", "CZE", "TUN", "EGY", "ISR", "RUS", "SVK", "SVN",
}

// mirrorSuffixes mark permission/field-control mirror entities. They share
// property names with the real data entities and would otherwise win the
// overlap count, so their match count is halved.
var mirrorSuffixes = []string{"Permissions", "Permission", "FieldControls"}

// Result describes the outcome of entity matching for one template.
// EntityType is empty when no entity matched at all; that is a legitimate,
// silent outcome, not an error.
type Result struct {
	EntityType     string
	MatchedColumns int
	MatchRatio     float64
	CountryBonus   int
}

// score is the ranking tuple. Compared lexicographically, descending.
type score struct {
	count   int
	ratio   float64
	country int
}

func (s score) less(o score) bool {
	if s.count != o.count {
		return s.count < o.count
	}
	if s.ratio != o.ratio {
		return s.ratio < o.ratio
	}
	return s.country < o.country
}

// Best scores every entity in the index against the normalized column set and
// returns the highest-ranked one.
//
// Ranking per entity:
//  1. matchCount = overlap between the column set and the entity's keys,
//     halved (integer division) for permission/field-control mirrors.
//  2. matchRatio = matchCount / max(len(entity keys), 1).
//  3. countryBonus = +1 when the entity name ends with the caller's country
//     code, -1 when it ends with a different recognized code, else 0.
//
// Entities are ranked by (matchCount, matchRatio, countryBonus) descending;
// ties resolve to the first-seen entity in document order. A best matchCount
// of zero yields an empty EntityType.
func Best(normalizedColumns map[string]struct{}, ix *schema.Index, country string) Result {
	var best Result
	bestScore := score{}

	for _, name := range ix.EntityOrder {
		props := ix.ByEntity[name]

		count := 0
		for key := range normalizedColumns {
			if _, ok := props[key]; ok {
				count++
			}
		}
		if count == 0 {
			continue
		}

		if hasAnySuffix(name, mirrorSuffixes) {
			count = count / 2
		}

		bonus := countryBonus(name, country)
		ratio := float64(count) / float64(max(len(props), 1))

		s := score{count: count, ratio: ratio, country: bonus}
		if bestScore.less(s) {
			bestScore = s
			best = Result{
				EntityType:     name,
				MatchedColumns: count,
				MatchRatio:     ratio,
				CountryBonus:   bonus,
			}
		}
	}

	if bestScore.count == 0 {
		return Result{}
	}
	return best
}

// Resolve returns the authoritative property definition for one normalized
// column.
//
// Lookup order:
//  1. The matched entity's own properties, when matchedEntity is non-empty.
//  2. The global list's first element, in document order. When several
//     entities define the same name with conflicting metadata this can pick a
//     definition from the "wrong" entity; that document-order tie-break is a
//     known, accepted ambiguity and must be reproduced exactly.
//
// Returns nil when no definition exists anywhere; that is the only outcome
// callers should treat as "unmatched".
func Resolve(normalizedColumn, matchedEntity string, ix *schema.Index) *schema.PropertyEntry {
	if matchedEntity != "" {
		if p, ok := ix.ByEntity[matchedEntity][normalizedColumn]; ok {
			return p
		}
	}
	if entries := ix.Global[normalizedColumn]; len(entries) > 0 {
		return entries[0]
	}
	return nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func countryBonus(entity, country string) int {
	if country == "" {
		return 0
	}
	if strings.HasSuffix(entity, country) {
		return 1
	}
	for _, c := range CountryCodes {
		if c != country && strings.HasSuffix(entity, c) {
			return -1
		}
	}
	return 0
}
