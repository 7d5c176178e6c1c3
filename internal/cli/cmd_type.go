package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) typeCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("type", flag.ContinueOnError),
		Usage: "type <uri>",
		Short: "Print the content type of an identifier",
		Target: &Target{Resolve: a.resolveURI},
		Exec: func(_ context.Context, o *IO, args []string) error {
			typ, err := a.provider.TypeOf(args[0])
			if err != nil {
				return err
			}

			o.Println(typ)

			return nil
		},
	}
}
