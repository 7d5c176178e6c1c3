package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/schema"
)

func (a *app) insertCmd() *Command {
	fs := flag.NewFlagSet("insert", flag.ContinueOnError)
	set := fs.StringArrayP("set", "s", nil, "Column value as key=value (repeatable)")

	return &Command{
		Flags: fs,
		Usage: "insert -s key=value... [uri]",
		Short: "Add a pet, prints its identifier",
		Long: "Add a pet to the collection (default: " + schema.PathPets + ").\n\n" +
			"Columns: name (required), breed, gender (unknown|male|female or 0-2),\n" +
			"weight (non-negative integer, default 0).",
		Target: &Target{Default: schema.PathPets, Resolve: a.resolveURI},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			uri := args[0]

			values, err := parseValues(*set)
			if err != nil {
				return err
			}

			item, err := a.provider.Insert(ctx, uri, values)
			if err != nil {
				return err
			}

			o.Println(item)

			return nil
		},
	}
}
