package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/router"
)

func (a *app) deleteCmd() *Command {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)

	var sel selectionFlags
	sel.register(fs)

	return &Command{
		Flags: fs,
		Usage: "delete <uri> [flags]",
		Short: "Remove pets, prints rows deleted",
		Long: "Remove the pets addressed by uri. On the collection without --where every\n" +
			"pet is removed.",
		Target: &Target{Resolve: a.resolveURI},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			uri := args[0]

			n, err := a.provider.Delete(ctx, uri, sel.where, sel.selectionArgs()...)
			if err != nil {
				return err
			}

			o.Println(n)

			if n == 0 && a.router.Match(uri).Kind == router.Item {
				o.Warn("pet not found: "+uri, "list ids with 'shelter query'")
			}

			return nil
		},
	}
}
