package transform

import (
	"reflect"
	"testing"

	"enrich/internal/schema"
	"enrich/internal/template"
)

const testEDMX = `<Schema xmlns:sap="http://www.sap.com/Protocols/SAPData">
  <EntityType Name="EmpJob">
    <Property Name="user-id" Type="Edm.String" MaxLength="10" sap:label="User"/>
    <Property Name="gender" Type="Edm.String" MaxLength="1" sap:label="Gender"/>
    <Property Name="start-date" Type="Edm.DateTime" MaxLength="30" sap:label="Start Date"/>
    <Property Name="pay-group" Type="SFOData.PicklistOption" sap:label="Pay Group"/>
    <Property Name="first-name" Type="Edm.String" MaxLength="64" sap:label="First Name"/>
    <Property Name="status-description" Type="Edm.String" sap:label="Status Description"/>
    <Property Name="email-address" Type="Edm.String" MaxLength="255" sap:required="true" sap:label="Email Address"/>
  </EntityType>
  <EntityType Name="Other">
    <Property Name="global-only" Type="Edm.Int32" sap:label="Global Only"/>
  </EntityType>
</Schema>`

func testIndex(t *testing.T) *schema.Index {
	t.Helper()
	ix, err := schema.Build([]byte(testEDMX))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func testTemplate(t *testing.T) *template.Template {
	t.Helper()
	tpl, err := template.FromRows("EmpJob.csv", [][]string{
		{"userId", "operation", "gender", "startDate", "payGroup", "firstName", "statusDescription", "emailAddress", "globalOnly", "mystery"},
		{"User", "Op", "Gender", "Start", "Pay", "First", "Status", "Email", "Global", "?"},
		{"1001", "", "F", "2020-01-01", "MONTHLY", "Ann", "ok", "a@x.test", "5", "?"},
		{"1002", "", "M", "2020-02-01", "WEEKLY", "Bob", "ok", "b@x.test", "6", "?"},
		{"1003", "", "F", "2020-03-01", "MONTHLY", "Cas", "ok", "c@x.test", "7", "?"},
	})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return tpl
}

func columnByName(t *testing.T, res Result, name string) ColumnMetadata {
	t.Helper()
	for _, c := range res.Columns {
		if c.ColumnName == name {
			return c
		}
	}
	t.Fatalf("column %q not in result", name)
	return ColumnMetadata{}
}

// TestTemplateResolution walks one full transformation and checks each
// resolution rule on its own column.
//
// Edge cases:
//   - identity metadata overrides the schema definition entirely
//   - date columns get max length 10 regardless of the declared value
//   - navigation-typed and keyword-classified columns both become picklists
//   - a non-picklist keyword wins over a picklist keyword in the same name
//   - columns absent from the matched entity fall back to the global index
func TestTemplateResolution(t *testing.T) {
	t.Parallel()

	ix := testIndex(t)
	res := Template(testTemplate(t), ix, Options{Country: "GBR", SkipOperation: true})

	if res.EntityType != "EmpJob" {
		t.Fatalf("EntityType=%q, want EmpJob", res.EntityType)
	}
	if len(res.Columns) != 10 {
		t.Fatalf("got %d columns, want 10", len(res.Columns))
	}

	// Identity: the schema's 10-char optional definition is ignored.
	user := columnByName(t, res, "userId")
	want := ColumnMetadata{
		ColumnName:   "userId",
		Label:        "User ID",
		FriendlyType: schema.TypeString,
		Mandatory:    true,
		MaxLength:    100,
	}
	if !reflect.DeepEqual(user, want) {
		t.Fatalf("userId=%+v, want %+v", user, want)
	}

	op := columnByName(t, res, "operation")
	if op.Label != "Operation" || op.FriendlyType != schema.TypeString || op.Mandatory || op.MaxLength != 0 {
		t.Fatalf("operation=%+v", op)
	}

	gender := columnByName(t, res, "gender")
	if gender.FriendlyType != schema.TypePicklist {
		t.Fatalf("gender type=%q, want picklist", gender.FriendlyType)
	}
	if wantVals := []string{"F", "M"}; !reflect.DeepEqual(gender.PicklistValues, wantVals) {
		t.Fatalf("gender values=%v, want %v", gender.PicklistValues, wantVals)
	}

	start := columnByName(t, res, "startDate")
	if start.FriendlyType != schema.TypeDate || start.MaxLength != 10 {
		t.Fatalf("startDate=%+v, want date with max length 10", start)
	}

	pay := columnByName(t, res, "payGroup")
	if pay.FriendlyType != schema.TypePicklist {
		t.Fatalf("payGroup type=%q, want picklist", pay.FriendlyType)
	}
	if wantVals := []string{"MONTHLY", "WEEKLY"}; !reflect.DeepEqual(pay.PicklistValues, wantVals) {
		t.Fatalf("payGroup values=%v, want %v", pay.PicklistValues, wantVals)
	}

	first := columnByName(t, res, "firstName")
	if first.FriendlyType != schema.TypeString || first.MaxLength != 64 {
		t.Fatalf("firstName=%+v, want plain string", first)
	}

	// "statusDescription" contains both a picklist keyword (status) and a
	// non-picklist keyword (description); the override keeps it a string.
	status := columnByName(t, res, "statusDescription")
	if status.FriendlyType != schema.TypeString {
		t.Fatalf("statusDescription type=%q, want string", status.FriendlyType)
	}

	email := columnByName(t, res, "emailAddress")
	if !email.Mandatory || email.MaxLength != 255 {
		t.Fatalf("emailAddress=%+v, want mandatory with max length 255", email)
	}

	global := columnByName(t, res, "globalOnly")
	if global.FriendlyType != schema.TypeInteger || global.Label != "Global Only" {
		t.Fatalf("globalOnly=%+v, want global fallback to Other's definition", global)
	}

	mystery := columnByName(t, res, "mystery")
	if mystery.Label != "mystery" || mystery.FriendlyType != "" || mystery.Mandatory {
		t.Fatalf("mystery=%+v, want raw-name record", mystery)
	}
	if !mystery.Unresolved() {
		t.Fatalf("mystery not reported unresolved")
	}
	if wantU := []string{"mystery"}; !reflect.DeepEqual(res.Unresolved, wantU) {
		t.Fatalf("Unresolved=%v, want %v", res.Unresolved, wantU)
	}
}

// TestTemplateOperationNotSkipped verifies the operation column goes through
// normal resolution when skipping is off; absent from the schema it comes back
// unresolved.
func TestTemplateOperationNotSkipped(t *testing.T) {
	t.Parallel()

	res := Template(testTemplate(t), testIndex(t), Options{})
	op := columnByName(t, res, "operation")
	if !op.Unresolved() {
		t.Fatalf("operation=%+v, want unresolved without -skip-operation", op)
	}
}

// TestTemplateAssignmentsWin verifies externally supplied assignments beat
// values extracted from the template's own data rows.
func TestTemplateAssignmentsWin(t *testing.T) {
	t.Parallel()

	res := Template(testTemplate(t), testIndex(t), Options{
		Assignments: map[string]string{"gender": "Female, Male, Undeclared"},
	})
	gender := columnByName(t, res, "gender")
	want := []string{"Female", "Male", "Undeclared"}
	if !reflect.DeepEqual(gender.PicklistValues, want) {
		t.Fatalf("gender values=%v, want assignment %v", gender.PicklistValues, want)
	}

	// An assignment that splits to nothing falls back to data extraction.
	res = Template(testTemplate(t), testIndex(t), Options{
		Assignments: map[string]string{"gender": " , "},
	})
	gender = columnByName(t, res, "gender")
	if want := []string{"F", "M"}; !reflect.DeepEqual(gender.PicklistValues, want) {
		t.Fatalf("gender values=%v, want data fallback %v", gender.PicklistValues, want)
	}
}

// TestTemplateNoEntityMatch verifies every column degrades to global or
// unresolved handling when nothing matches.
func TestTemplateNoEntityMatch(t *testing.T) {
	t.Parallel()

	tpl, err := template.FromRows("Stray.csv", [][]string{{"alpha", "beta"}})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	res := Template(tpl, testIndex(t), Options{})
	if res.EntityType != "" {
		t.Fatalf("EntityType=%q, want empty", res.EntityType)
	}
	if len(res.Unresolved) != 2 {
		t.Fatalf("Unresolved=%v, want both columns", res.Unresolved)
	}
}

// TestDataValuesCap verifies distinct extraction stops at the cap.
func TestDataValuesCap(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 0, 30)
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{string(rune('A' + i))})
	}
	got := dataValues(rows, 0, MaxDataValues)
	if len(got) != MaxDataValues {
		t.Fatalf("got %d values, want %d", len(got), MaxDataValues)
	}
}

// TestSplitValues verifies trimming, deduplication, and order preservation.
func TestSplitValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"Female, Male", []string{"Female", "Male"}},
		{" a ,b, a ,, c", []string{"a", "b", "c"}},
		{"", nil},
		{" , ,", nil},
	}
	for _, c := range cases {
		if got := SplitValues(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("SplitValues(%q)=%v, want %v", c.in, got, c.want)
		}
	}
}
