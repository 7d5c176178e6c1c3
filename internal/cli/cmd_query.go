package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/provider"
	"github.com/calvinalkan/shelter/internal/schema"
)

func (a *app) queryCmd() *Command {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	columns := fs.StringSliceP("columns", "p", nil, "Columns to print, comma separated (default: all)")
	sort := fs.StringP("sort", "o", "", `Sort order, e.g. "weight desc, name"`)

	var sel selectionFlags
	sel.register(fs)

	return &Command{
		Flags: fs,
		Usage: "query [uri] [flags]",
		Short: "Print pets, one per line",
		Long: "Print the pets addressed by uri (default: " + schema.PathPets + ") as tab separated\n" +
			"columns: _id, name, breed, gender, weight. A missing breed prints as\n" +
			"\"" + unknownBreed + "\".",
		Target: &Target{Default: schema.PathPets, Resolve: a.resolveURI},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			cur, err := a.provider.Query(ctx, args[0], provider.QueryOptions{
				Columns:       *columns,
				Selection:     sel.where,
				SelectionArgs: sel.selectionArgs(),
				SortOrder:     *sort,
			})
			if err != nil {
				return err
			}

			defer func() { _ = cur.Close() }()

			projected := cur.Columns()

			for pet, iterErr := range cur.All() {
				if iterErr != nil {
					return iterErr
				}

				o.PrintRow(petFields(pet, projected)...)
			}

			return nil
		},
	}
}
