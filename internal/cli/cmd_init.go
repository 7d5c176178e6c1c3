package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/config"
)

var errConfigExists = errors.New("config already exists (use --force to overwrite)")

func (a *app) initCmd() *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	authority := fs.String("authority", "", "Authority identifiers must carry")
	force := fs.Bool("force", false, "Overwrite an existing "+config.FileName)

	return &Command{
		Flags: fs,
		Usage: "init [--authority name] [--force]",
		Short: "Write " + config.FileName + " and create the database",
		Long: "Write a project config to " + config.FileName + " in the working directory and\n" +
			"create the database file with the pets table. Running init on an existing\n" +
			"database leaves its rows untouched.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %v", errTooManyArgs, args)
			}

			return a.execInit(ctx, o, *authority, *force)
		},
	}
}

func (a *app) execInit(ctx context.Context, o *IO, authority string, force bool) error {
	path := filepath.Join(a.cfg.EffectiveCwd, config.FileName)

	_, statErr := os.Stat(path)
	if statErr == nil && !force {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}

	cfg := config.Default()
	cfg.DBPath = a.cfg.DBPath
	cfg.Authority = a.cfg.Authority

	if authority != "" {
		cfg.Authority = authority
	}

	err := config.Validate(cfg)
	if err != nil {
		return err
	}

	err = config.Write(path, cfg)
	if err != nil {
		return err
	}

	err = a.store.Open(ctx)
	if err != nil {
		return err
	}

	o.Println("config=" + path)
	o.Println("db=" + a.store.Path())

	return nil
}
