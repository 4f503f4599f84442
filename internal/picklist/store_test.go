package picklist

import (
	"reflect"
	"testing"
)

func parsed(tables map[string]*Table, autoMap map[string]string) Parsed {
	return Parsed{Tables: tables, AutoMap: autoMap}
}

// TestMergeUnion verifies value sets union by code across sources.
//
// Edge cases:
//   - the first source of a code keeps its label
//   - new codes from later sources append in their own order
func TestMergeUnion(t *testing.T) {
	t.Parallel()

	first := parsed(map[string]*Table{
		"Gender": {Name: "Gender", Values: []Value{{"F", "Female"}, {"M", "Male"}}},
	}, nil)
	second := parsed(map[string]*Table{
		"Gender": {Name: "Gender", Values: []Value{{"M", "Man"}, {"U", "Undeclared"}}},
	}, nil)

	s := Merge(first, second)
	want := []Value{{"F", "Female"}, {"M", "Male"}, {"U", "Undeclared"}}
	if !reflect.DeepEqual(s.Tables["Gender"].Values, want) {
		t.Fatalf("merged values=%v, want %v", s.Tables["Gender"].Values, want)
	}
}

// TestMergeDisjointTables verifies sources with different tables combine
// without interference, regardless of merge order.
func TestMergeDisjointTables(t *testing.T) {
	t.Parallel()

	a := parsed(map[string]*Table{
		"Gender": {Name: "Gender", Values: []Value{{"F", "Female"}}},
	}, nil)
	b := parsed(map[string]*Table{
		"Country": {Name: "Country", Values: []Value{{"GB", "United Kingdom"}}},
	}, nil)

	ab, ba := Merge(a, b), Merge(b, a)
	for _, s := range []*Store{ab, ba} {
		if len(s.Tables) != 2 {
			t.Fatalf("Tables=%v, want Gender and Country", s.Tables)
		}
	}
	if !reflect.DeepEqual(ab.Tables["Gender"], ba.Tables["Gender"]) {
		t.Fatalf("disjoint merge order changed Gender: %v vs %v",
			ab.Tables["Gender"], ba.Tables["Gender"])
	}
}

// TestMergeDropsEmptyTables verifies tables with no values never enter the
// store.
func TestMergeDropsEmptyTables(t *testing.T) {
	t.Parallel()

	s := Merge(parsed(map[string]*Table{
		"Empty": {Name: "Empty"},
		"Full":  {Name: "Full", Values: []Value{{"1", "One"}}},
	}, nil))

	if _, ok := s.Tables["Empty"]; ok {
		t.Fatalf("empty table kept: %v", s.Tables)
	}
	if _, ok := s.Tables["Full"]; !ok {
		t.Fatalf("full table missing: %v", s.Tables)
	}
}

// TestMergeAutoMapFirstWins verifies per-column auto-map precedence follows
// source order.
func TestMergeAutoMapFirstWins(t *testing.T) {
	t.Parallel()

	s := Merge(
		parsed(nil, map[string]string{"gender": "Gender"}),
		parsed(nil, map[string]string{"gender": "Sex", "country": "Country"}),
	)
	want := map[string]string{"gender": "Gender", "country": "Country"}
	if !reflect.DeepEqual(s.AutoMap, want) {
		t.Fatalf("AutoMap=%v, want %v", s.AutoMap, want)
	}
}

// TestMergeEmpty verifies merging nothing yields a usable empty store.
func TestMergeEmpty(t *testing.T) {
	t.Parallel()

	s := Merge()
	if s.Tables == nil || s.AutoMap == nil {
		t.Fatalf("Merge() returned nil maps: %+v", s)
	}
	if len(s.Tables) != 0 || len(s.AutoMap) != 0 {
		t.Fatalf("Merge() not empty: %+v", s)
	}
}
