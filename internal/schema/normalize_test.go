package schema

import (
	"reflect"
	"testing"
)

// TestNormalize verifies the canonical key rules: last dotted segment,
// separator stripping, lowercasing.
//
// Edge cases:
//   - bracketed markers keep their brackets and never collide with real keys
//   - a trailing dot yields an empty key
//   - already-normalized input is unchanged
func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"person-id-external", "personidexternal"},
		{"personInfo.person-id-external", "personidexternal"},
		{"a.b.c.Pay_Group", "paygroup"},
		{"User ID", "userid"},
		{"userId", "userid"},
		{"[OPERATOR]", "[operator]"},
		{"start_date", "startdate"},
		{"startdate", "startdate"},
		{"trailing.", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

// TestNormalizeIdempotent verifies a normalized name normalizes to itself.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"person-id-external", "Pay Group", "nav.path.Field_X", "[OPERATOR]"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// TestNormalizeSet verifies deduplication of names that normalize identically.
func TestNormalizeSet(t *testing.T) {
	t.Parallel()

	got := NormalizeSet([]string{"user-id", "USER_ID", "userId", "gender"})
	want := map[string]struct{}{"userid": {}, "gender": {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSet=%v, want %v", got, want)
	}
}

// TestNormalizeAll verifies order and duplicates are preserved.
func TestNormalizeAll(t *testing.T) {
	t.Parallel()

	got := NormalizeAll([]string{"User ID", "user-id"})
	want := []string{"userid", "userid"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeAll=%v, want %v", got, want)
	}
}
