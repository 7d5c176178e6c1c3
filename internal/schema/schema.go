// Package schema is the single source of truth for the pets table: column
// names, constraints, the gender enum and the type tags handed out for
// collection and item identifiers.
//
// Everything here is constant lookup. Nothing in this package touches the
// database; the store derives its CREATE TABLE statement from [Pets].
package schema

import (
	"fmt"
	"strings"
)

// Version is stored in SQLite's user_version pragma.
// Increment this whenever the table layout changes.
const Version = 1

// Column names of the pets table.
const (
	ColumnID     = "_id"
	ColumnName   = "name"
	ColumnBreed  = "breed"
	ColumnGender = "gender"
	ColumnWeight = "weight"
)

// TablePets is the only table managed by the store.
const TablePets = "pets"

// PathPets is the identifier path of the pets collection.
const PathPets = "pets"

// Type tags returned by TypeOf for collection and item identifiers.
const (
	CollectionType = "vnd.shelter.cursor.dir/" + PathPets
	ItemType       = "vnd.shelter.cursor.item/" + PathPets
)

// ColumnType represents SQLite storage classes.
type ColumnType uint8

// SQLite column types used by the pets table.
const (
	ColText ColumnType = iota
	ColInt
)

func (t ColumnType) String() string {
	if t == ColInt {
		return "INTEGER"
	}

	return "TEXT"
}

// Column describes one column of a table.
type Column struct {
	Name string
	Type ColumnType

	// Required columns must hold a non-empty value whenever a row is persisted.
	Required bool

	// PrimaryKey marks the store-assigned autoincrement id.
	PrimaryKey bool

	// Default is the SQL literal used as column default, empty for none.
	Default string
}

// Table is an ordered column list plus its name.
type Table struct {
	Name    string
	Columns []Column
}

// Pets describes the pets table. Column order is the natural projection order.
var Pets = Table{
	Name: TablePets,
	Columns: []Column{
		{Name: ColumnID, Type: ColInt, PrimaryKey: true},
		{Name: ColumnName, Type: ColText, Required: true},
		{Name: ColumnBreed, Type: ColText},
		{Name: ColumnGender, Type: ColInt, Required: true},
		{Name: ColumnWeight, Type: ColInt, Required: true, Default: "0"},
	},
}

// ColumnNames returns all column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}

	return names
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}

	return Column{}, false
}

// CreateSQL returns the CREATE TABLE statement for t.
func (t Table) CreateSQL() string {
	var b strings.Builder

	b.WriteString("CREATE TABLE ")
	b.WriteString(t.Name)
	b.WriteString(" (")

	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(col.Name)
		b.WriteString(" ")
		b.WriteString(col.Type.String())

		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		}

		if col.Required {
			b.WriteString(" NOT NULL")
		}

		if col.Default != "" {
			b.WriteString(" DEFAULT ")
			b.WriteString(col.Default)
		}
	}

	b.WriteString(")")

	return b.String()
}

// Gender is stored as an integer in the gender column.
type Gender int64

// Gender values.
const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Genders lists every valid gender value.
var Genders = []Gender{GenderUnknown, GenderMale, GenderFemale}

// Valid reports whether g is one of the enum values.
func (g Gender) Valid() bool {
	return g >= GenderUnknown && g <= GenderFemale
}

func (g Gender) String() string {
	switch g {
	case GenderUnknown:
		return "unknown"
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return fmt.Sprintf("gender(%d)", int64(g))
	}
}

// ParseGender accepts the names printed by [Gender.String].
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown":
		return GenderUnknown, true
	case "male":
		return GenderMale, true
	case "female":
		return GenderFemale, true
	default:
		return 0, false
	}
}
