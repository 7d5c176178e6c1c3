package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/provider"
	"github.com/calvinalkan/shelter/internal/schema"
)

var errInvalidSet = errors.New("invalid --set, expected key=value")

const unknownBreed = "unknown breed"

// parseValues turns repeated key=value pairs into a value bag. A later
// pair for the same key wins.
func parseValues(pairs []string) (provider.Values, error) {
	values := make(provider.Values, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidSet, pair)
		}

		values[key] = value
	}

	return values, nil
}

// selectionFlags are shared by query, update and delete.
type selectionFlags struct {
	where string
	args  []string
}

func (s *selectionFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&s.where, "where", "w", "", "SQL filter with ? placeholders (ignored for item identifiers)")
	fs.StringArrayVarP(&s.args, "arg", "a", nil, "Placeholder value for --where (repeatable)")
}

func (s *selectionFlags) selectionArgs() []any {
	out := make([]any, len(s.args))
	for i, v := range s.args {
		out[i] = v
	}

	return out
}

// petFields renders the projected columns of p.
func petFields(p provider.Pet, columns []string) []string {
	fields := make([]string, len(columns))

	for i, col := range columns {
		switch col {
		case schema.ColumnID:
			fields[i] = strconv.FormatInt(p.ID, 10)
		case schema.ColumnName:
			fields[i] = p.Name
		case schema.ColumnBreed:
			fields[i] = p.Breed
			if fields[i] == "" {
				fields[i] = unknownBreed
			}
		case schema.ColumnGender:
			fields[i] = p.Gender.String()
		case schema.ColumnWeight:
			fields[i] = strconv.FormatInt(p.Weight, 10)
		}
	}

	return fields
}
