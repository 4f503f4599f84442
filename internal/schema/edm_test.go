package schema

import "testing"

// TestFriendlyType verifies the raw-to-friendly type mapping.
//
// Edge cases:
//   - SFOData.* navigation types always map to picklist
//   - unmapped raw types pass through verbatim
//   - the empty type passes through as empty
func TestFriendlyType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Edm.String", TypeString},
		{"Edm.Decimal", TypeFloat},
		{"Edm.Double", TypeFloat},
		{"Edm.DateTime", TypeDate},
		{"Edm.DateTimeOffset", TypeDate},
		{"Edm.Int32", TypeInteger},
		{"Edm.Int64", TypeInteger},
		{"Edm.Boolean", TypeBoolean},
		{"Edm.Binary", TypeBinary},
		{"Edm.Time", TypeTime},
		{"SFOData.PicklistOption", TypePicklist},
		{"SFOData.Whatever", TypePicklist},
		{"Edm.Guid", "Edm.Guid"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FriendlyType(c.in); got != c.want {
			t.Fatalf("FriendlyType(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
