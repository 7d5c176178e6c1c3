package provider

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calvinalkan/shelter/internal/schema"
)

// Values is the loosely typed value bag passed to Insert and Update. Keys
// are column names; unknown keys and the id column are ignored.
//
// Accepted value types: string, every Go integer kind, integral float64 and
// float32, json.Number, schema.Gender and nil. Gender additionally accepts
// the names "unknown", "male" and "female".
type Values map[string]any

// mode selects the required-field rules applied by bind.
type mode uint8

const (
	// modeInsert requires name. Absent gender and weight take their
	// defaults.
	modeInsert mode = iota

	// modeUpdate requires every required column to be present and non-empty.
	modeUpdate
)

// boundRow is a validated value bag in table column order, ready to be
// bound to an INSERT or UPDATE statement.
type boundRow struct {
	columns []string
	args    []any
}

func (r *boundRow) set(column string, v any) {
	r.columns = append(r.columns, column)
	r.args = append(r.args, v)
}

// bind validates values against schema.Pets and converts them into a
// boundRow. Columns are checked in table order, so the error names the
// first failing column.
func bind(values Values, m mode) (boundRow, error) {
	var row boundRow

	for _, col := range schema.Pets.Columns {
		if col.PrimaryKey {
			continue
		}

		raw, present := values[col.Name]

		if !present || raw == nil {
			switch {
			case m == modeUpdate && col.Required:
				return boundRow{}, requiredError(col.Name)
			case col.Name == schema.ColumnName:
				return boundRow{}, requiredError(col.Name)
			case col.Name == schema.ColumnGender:
				row.set(col.Name, int64(schema.GenderUnknown))
			case col.Name == schema.ColumnBreed && present:
				row.set(col.Name, nil)
			}

			continue
		}

		v, err := convert(col.Name, raw)
		if err != nil {
			return boundRow{}, err
		}

		row.set(col.Name, v)
	}

	return row, nil
}

func convert(column string, raw any) (any, error) {
	switch column {
	case schema.ColumnName:
		s, ok := toText(raw)
		if !ok {
			return nil, invalidError(column, "must be text, got %T", raw)
		}

		if strings.TrimSpace(s) == "" {
			return nil, requiredError(column)
		}

		return s, nil
	case schema.ColumnBreed:
		s, ok := toText(raw)
		if !ok {
			return nil, invalidError(column, "must be text, got %T", raw)
		}

		if s == "" {
			return nil, nil
		}

		return s, nil
	case schema.ColumnGender:
		g, err := toGender(raw)
		if err != nil {
			return nil, err
		}

		return int64(g), nil
	case schema.ColumnWeight:
		n, ok := toInt(raw)
		if !ok {
			if s, isText := raw.(string); isText && strings.TrimSpace(s) == "" {
				return nil, requiredError(column)
			}

			return nil, invalidError(column, "must be a non-negative integer, got %v", raw)
		}

		if n < 0 {
			return nil, invalidError(column, "must be a non-negative integer, got %d", n)
		}

		return n, nil
	default:
		return nil, invalidError(column, "unknown column")
	}
}

func toText(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

func toGender(raw any) (schema.Gender, error) {
	if s, ok := raw.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return 0, requiredError(schema.ColumnGender)
		}

		if g, named := schema.ParseGender(trimmed); named {
			return g, nil
		}
	}

	n, ok := toInt(raw)
	if !ok || !schema.Gender(n).Valid() {
		return 0, invalidError(schema.ColumnGender, "must be one of unknown(0), male(1), female(2), got %v", raw)
	}

	return schema.Gender(n), nil
}

// toInt converts integer-like values. Floats must be integral.
func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt(v)
	case schema.Gender:
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		n, err := v.Int64()

		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)

		return n, err == nil
	default:
		return 0, false
	}
}

func uintToInt(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}

	return int64(v), true
}

func floatToInt(f float64) (int64, bool) {
	// float64(math.MaxInt64) rounds up to 2^63, hence >=.
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

func requiredError(column string) error {
	return &fieldError{field: column, err: fmt.Errorf("%w: %s is required", ErrValidation, column)}
}

func invalidError(column, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	return &fieldError{field: column, err: fmt.Errorf("%w: %s %s", ErrValidation, column, msg)}
}
