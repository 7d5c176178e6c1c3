package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/router"
)

func (a *app) updateCmd() *Command {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	set := fs.StringArrayP("set", "s", nil, "Column value as key=value (repeatable)")

	var sel selectionFlags
	sel.register(fs)

	return &Command{
		Flags: fs,
		Usage: "update <uri> -s key=value... [flags]",
		Short: "Overwrite pets, prints rows changed",
		Long: "Overwrite the pets addressed by uri. name, gender and weight must all be\n" +
			"given. Without -s nothing is changed and 0 is printed.",
		Target: &Target{Resolve: a.resolveURI},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			uri := args[0]

			values, err := parseValues(*set)
			if err != nil {
				return err
			}

			n, err := a.provider.Update(ctx, uri, values, sel.where, sel.selectionArgs()...)
			if err != nil {
				return err
			}

			o.Println(n)

			if n == 0 && len(values) > 0 && a.router.Match(uri).Kind == router.Item {
				o.Warn("pet not found: "+uri, "list ids with 'shelter query'")
			}

			return nil
		},
	}
}
