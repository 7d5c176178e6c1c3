package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/calvinalkan/shelter/internal/router"
	"github.com/calvinalkan/shelter/internal/schema"
)

// Pet is one row of the pets table. Columns left out of a projection keep
// their zero value.
type Pet struct {
	ID     int64
	Name   string
	Breed  string // Breed is empty when NULL.
	Gender schema.Gender
	Weight int64
}

// QueryOptions narrows a query. Zero values mean "everything".
type QueryOptions struct {
	// Columns is the projection. Empty selects every column in table order.
	Columns []string

	// Selection is a SQL WHERE expression with ? placeholders. Ignored for
	// item identifiers.
	Selection string

	// SelectionArgs bind the placeholders in Selection.
	SelectionArgs []any

	// SortOrder is a comma separated list of "column [ASC|DESC]". Empty
	// means the store's natural order.
	SortOrder string
}

// Query returns the rows addressed by uri. For an item identifier the
// selection is replaced by the row id; for the collection it is used as
// given. The returned [Cursor] must be closed.
func (p *PetProvider) Query(ctx context.Context, uri string, opts QueryOptions) (*Cursor, error) {
	const op = "query"

	logger := p.opLogger(op, uri)

	rt, err := p.resolve(uri)
	if err != nil {
		return nil, fail(logger, err, op, uri)
	}

	columns, err := projection(opts.Columns)
	if err != nil {
		return nil, fail(logger, err, op, uri)
	}

	orderBy, err := sortOrder(opts.SortOrder)
	if err != nil {
		return nil, fail(logger, err, op, uri)
	}

	selection, args := opts.Selection, opts.SelectionArgs
	if rt.match.Kind == router.Item {
		selection, args = itemSelection(rt.id)
	}

	err = checkSelection(selection)
	if err != nil {
		return nil, fail(logger, err, op, uri)
	}

	db, err := p.store.Readable(ctx)
	if err != nil {
		return nil, fail(logger, err, op, uri)
	}

	stmt := buildSelect(columns, selection, orderBy)
	logger.Debug("query", "route", rt.match.Kind, "sql", stmt)

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fail(logger, fmt.Errorf("select %s: %w", schema.TablePets, err), op, uri)
	}

	return &Cursor{rows: rows, columns: columns}, nil
}

// projection validates requested columns. Empty means all columns.
func projection(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return schema.Pets.ColumnNames(), nil
	}

	columns := make([]string, 0, len(requested))

	for _, name := range requested {
		if _, ok := schema.Pets.Column(name); !ok {
			return nil, invalidError(name, "is not a column of %s", schema.TablePets)
		}

		columns = append(columns, name)
	}

	return columns, nil
}

// sortOrder validates "column [ASC|DESC], ..." and returns it normalized.
func sortOrder(order string) (string, error) {
	if strings.TrimSpace(order) == "" {
		return "", nil
	}

	terms := strings.Split(order, ",")
	out := make([]string, 0, len(terms))

	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", invalidError("sort", "term %q must be \"column [ASC|DESC]\"", strings.TrimSpace(term))
		}

		if _, ok := schema.Pets.Column(fields[0]); !ok {
			return "", invalidError("sort", "%q is not a column of %s", fields[0], schema.TablePets)
		}

		dir := "ASC"

		if len(fields) == 2 {
			dir = strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return "", invalidError("sort", "direction %q must be ASC or DESC", fields[1])
			}
		}

		out = append(out, fields[0]+" "+dir)
	}

	return strings.Join(out, ", "), nil
}

// checkSelection rejects a selection that holds more than one statement.
// Semicolons inside quoted literals or identifiers are allowed.
func checkSelection(selection string) error {
	var quote rune

	for _, r := range selection {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			return invalidError("selection", "must be a single expression without ';'")
		}
	}

	return nil
}

func buildSelect(columns []string, selection, orderBy string) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(schema.TablePets)

	if selection != "" {
		b.WriteString(" WHERE ")
		b.WriteString(selection)
	}

	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}

	return b.String()
}

// Cursor is a lazy, forward-only pass over query results. Run the query
// again to start over.
//
//	cur, err := p.Query(ctx, uri, provider.QueryOptions{})
//	if err != nil { ... }
//	defer cur.Close()
//	for cur.Next() {
//	    pet := cur.Pet()
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor struct {
	rows    *sql.Rows
	columns []string
	current Pet
	err     error
	closed  bool
}

// Columns returns the projected column names.
func (c *Cursor) Columns() []string {
	return slices.Clone(c.columns)
}

// Next advances to the next row. It returns false when the rows are
// exhausted or a scan fails; check [Cursor.Err] afterwards.
func (c *Cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}

	if !c.rows.Next() {
		c.err = c.rows.Err()
		_ = c.Close()

		return false
	}

	pet, err := scanPet(c.rows, c.columns)
	if err != nil {
		c.err = err
		_ = c.Close()

		return false
	}

	c.current = pet

	return true
}

// Pet returns the row Next moved to.
func (c *Cursor) Pet() Pet {
	return c.current
}

// Err returns the first error hit while iterating.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying rows. Idempotent.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true

	return c.rows.Close()
}

// All yields every remaining row, then the iteration error if any. The
// cursor is closed when iteration stops.
func (c *Cursor) All() iter.Seq2[Pet, error] {
	return func(yield func(Pet, error) bool) {
		defer func() { _ = c.Close() }()

		for c.Next() {
			if !yield(c.current, nil) {
				return
			}
		}

		if c.err != nil {
			yield(Pet{}, c.err)
		}
	}
}

// Collect drains the cursor into a slice and closes it.
func (c *Cursor) Collect() ([]Pet, error) {
	var pets []Pet

	for pet, err := range c.All() {
		if err != nil {
			return nil, err
		}

		pets = append(pets, pet)
	}

	return pets, nil
}

func scanPet(rows *sql.Rows, columns []string) (Pet, error) {
	var (
		pet    Pet
		name   sql.NullString
		breed  sql.NullString
		gender sql.NullInt64
		weight sql.NullInt64
	)

	dest := make([]any, len(columns))

	for i, col := range columns {
		switch col {
		case schema.ColumnID:
			dest[i] = &pet.ID
		case schema.ColumnName:
			dest[i] = &name
		case schema.ColumnBreed:
			dest[i] = &breed
		case schema.ColumnGender:
			dest[i] = &gender
		case schema.ColumnWeight:
			dest[i] = &weight
		default:
			return Pet{}, errors.New("scan: unknown column " + col)
		}
	}

	err := rows.Scan(dest...)
	if err != nil {
		return Pet{}, fmt.Errorf("scan %s: %w", schema.TablePets, err)
	}

	pet.Name = name.String
	pet.Breed = breed.String
	pet.Gender = schema.Gender(gender.Int64)
	pet.Weight = weight.Int64

	return pet, nil
}
