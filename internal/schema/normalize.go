package schema

import "strings"

// Normalize converts a raw column header or property name into the canonical
// lookup key used by the index, the matcher, and the reference store.
//
// Rules, in order:
//  1. If the name contains a dotted navigation path (e.g.
//     "personInfo.person-id-external"), keep only the segment after the last dot.
//  2. Remove hyphens, underscores, and spaces.
//  3. Lowercase the remainder.
//
// Other punctuation is intentionally preserved. A bracketed instruction marker
// such as "[OPERATOR]" must never normalize into a real property key.
func Normalize(raw string) string {
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		raw = raw[i+1:]
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// NormalizeAll normalizes every name in order. Duplicates are preserved.
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

// NormalizeSet returns the set of normalized names.
func NormalizeSet(raw []string) map[string]struct{} {
	out := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		out[Normalize(r)] = struct{}{}
	}
	return out
}
