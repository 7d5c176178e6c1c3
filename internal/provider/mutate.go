package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/calvinalkan/shelter/internal/router"
	"github.com/calvinalkan/shelter/internal/schema"
)

// Insert adds a pet to the collection addressed by uri and returns the new
// row's identifier.
//
// name is required. gender defaults to unknown and weight to 0 when absent.
// On a validation failure nothing is written and the returned *Error carries
// the collection uri and the offending field.
func (p *PetProvider) Insert(ctx context.Context, uri string, values Values) (string, error) {
	const op = "insert"

	logger := p.opLogger(op, uri)

	rt, err := p.resolve(uri)
	if err != nil {
		return "", fail(logger, err, op, uri)
	}

	if rt.match.Kind != router.Collection {
		return "", fail(logger, fmt.Errorf("%w: insert into %s", ErrUnsupportedOperation, rt.match.Kind), op, uri)
	}

	row, err := bind(values, modeInsert)
	if err != nil {
		return "", fail(logger, err, op, uri)
	}

	db, err := p.store.Writable(ctx)
	if err != nil {
		return "", fail(logger, err, op, uri)
	}

	stmt := buildInsert(row.columns)

	res, err := db.ExecContext(ctx, stmt, row.args...)
	if err != nil {
		return "", fail(logger, fmt.Errorf("%w: insert into %s: %w", ErrStoreWrite, schema.TablePets, err), op, uri)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fail(logger, fmt.Errorf("%w: read row id: %w", ErrStoreWrite, err), op, uri)
	}

	itemURI := p.itemURI(rt.match, id)
	logger.Debug("inserted", "id", id, "item", itemURI)

	return itemURI, nil
}

// Update overwrites the columns present in values on every row addressed by
// uri and returns the number of rows changed.
//
// An empty value bag changes nothing and returns 0. Otherwise name, gender
// and weight must all be present and non-empty. For an item identifier the
// selection is replaced by the row id.
func (p *PetProvider) Update(ctx context.Context, uri string, values Values, selection string, selectionArgs ...any) (int64, error) {
	const op = "update"

	logger := p.opLogger(op, uri)

	rt, err := p.resolve(uri)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	if len(values) == 0 {
		logger.Debug("empty value bag, nothing to update")

		return 0, nil
	}

	row, err := bind(values, modeUpdate)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	if rt.match.Kind == router.Item {
		selection, selectionArgs = itemSelection(rt.id)
	}

	err = checkSelection(selection)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	db, err := p.store.Writable(ctx)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	stmt := buildUpdate(row.columns, selection)
	args := append(row.args, selectionArgs...)

	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fail(logger, fmt.Errorf("%w: update %s: %w", ErrStoreWrite, schema.TablePets, err), op, uri)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fail(logger, fmt.Errorf("%w: rows affected: %w", ErrStoreWrite, err), op, uri)
	}

	logger.Debug("updated", "rows", n)

	return n, nil
}

// Delete removes every row addressed by uri and returns how many were
// deleted. An empty selection on the collection deletes all rows.
func (p *PetProvider) Delete(ctx context.Context, uri string, selection string, selectionArgs ...any) (int64, error) {
	const op = "delete"

	logger := p.opLogger(op, uri)

	rt, err := p.resolve(uri)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	if rt.match.Kind == router.Item {
		selection, selectionArgs = itemSelection(rt.id)
	}

	err = checkSelection(selection)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	db, err := p.store.Writable(ctx)
	if err != nil {
		return 0, fail(logger, err, op, uri)
	}

	stmt := "DELETE FROM " + schema.TablePets
	if selection != "" {
		stmt += " WHERE " + selection
	}

	res, err := db.ExecContext(ctx, stmt, selectionArgs...)
	if err != nil {
		return 0, fail(logger, fmt.Errorf("%w: delete from %s: %w", ErrStoreWrite, schema.TablePets, err), op, uri)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fail(logger, fmt.Errorf("%w: rows affected: %w", ErrStoreWrite, err), op, uri)
	}

	logger.Debug("deleted", "rows", n)

	return n, nil
}

// buildInsert generates INSERT INTO pets (a, b) VALUES (?, ?).
func buildInsert(columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	return "INSERT INTO " + schema.TablePets +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
}

// buildUpdate generates UPDATE pets SET a = ?, b = ? [WHERE selection].
func buildUpdate(columns []string, selection string) string {
	var b strings.Builder

	b.WriteString("UPDATE ")
	b.WriteString(schema.TablePets)
	b.WriteString(" SET ")

	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(col)
		b.WriteString(" = ?")
	}

	if selection != "" {
		b.WriteString(" WHERE ")
		b.WriteString(selection)
	}

	return b.String()
}
