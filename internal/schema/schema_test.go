package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/shelter/internal/schema"
)

func Test_CreateSQL_Matches_Pets_Table_Layout(t *testing.T) {
	t.Parallel()

	want := "CREATE TABLE pets (" +
		"_id INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"name TEXT NOT NULL, " +
		"breed TEXT, " +
		"gender INTEGER NOT NULL, " +
		"weight INTEGER NOT NULL DEFAULT 0)"

	got := schema.Pets.CreateSQL()
	if got != want {
		t.Fatalf("CreateSQL mismatch\n got: %s\nwant: %s", got, want)
	}
}

func Test_ColumnNames_Returns_Table_Order(t *testing.T) {
	t.Parallel()

	want := []string{"_id", "name", "breed", "gender", "weight"}

	if diff := cmp.Diff(want, schema.Pets.ColumnNames()); diff != "" {
		t.Fatalf("column names (-want +got):\n%s", diff)
	}
}

func Test_Column_Reports_Required_Flags(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		schema.ColumnID:     false,
		schema.ColumnName:   true,
		schema.ColumnBreed:  false,
		schema.ColumnGender: true,
		schema.ColumnWeight: true,
	}

	for name, required := range cases {
		col, ok := schema.Pets.Column(name)
		if !ok {
			t.Fatalf("column %q missing", name)
		}

		if col.Required != required {
			t.Fatalf("column %q required = %v, want %v", name, col.Required, required)
		}
	}

	if _, ok := schema.Pets.Column("owner"); ok {
		t.Fatal("unknown column reported as present")
	}
}

func Test_Gender_Parse_And_String_Round_Trip(t *testing.T) {
	t.Parallel()

	for _, g := range schema.Genders {
		if !g.Valid() {
			t.Fatalf("%v should be valid", g)
		}

		parsed, ok := schema.ParseGender(g.String())
		if !ok || parsed != g {
			t.Fatalf("ParseGender(%q) = %v, %v", g.String(), parsed, ok)
		}
	}

	if schema.Gender(3).Valid() || schema.Gender(-1).Valid() {
		t.Fatal("out of range gender reported valid")
	}

	if _, ok := schema.ParseGender("dog"); ok {
		t.Fatal("ParseGender accepted an unknown name")
	}
}
