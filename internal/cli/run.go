// Package cli implements the shelter command line: global flag handling,
// configuration loading and the commands that drive the pets provider.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/config"
	"github.com/calvinalkan/shelter/internal/logging"
	"github.com/calvinalkan/shelter/internal/provider"
	"github.com/calvinalkan/shelter/internal/router"
	"github.com/calvinalkan/shelter/internal/store"
)

var errUnknownCommand = errors.New("unknown command")

// Run is the main entry point. Returns exit code.
//
// args includes the program name. in may be nil, which reads as empty
// input. sigCh may be nil; when it delivers, the running command's context
// is cancelled.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if in == nil {
		in = strings.NewReader("")
	}

	globals, err := parseGlobalFlags(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut)

		return 1
	}

	if globals.help || len(globals.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  globals.workDir,
		ConfigPath:       globals.configPath,
		DBPathOverride:   globals.dbPath,
		LogLevelOverride: globals.logLevel,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	a, err := newApp(cfg, in, out, errOut, env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() {
		closeErr := a.close()
		if closeErr != nil {
			a.logger.Warn("closing store", "err", closeErr)
		}
	}()

	return a.dispatch(ctx, globals.remaining)
}

// app is the per-invocation state shared by all commands.
type app struct {
	cfg      config.Config
	env      map[string]string
	logger   *slog.Logger
	store    *store.Store
	router   *router.Router
	provider *provider.PetProvider

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(cfg config.Config, in io.Reader, out, errOut io.Writer, env map[string]string) (*app, error) {
	logger := logging.New(errOut, cfg.LogLevel, cfg.LogFormat)

	st, err := store.New(cfg.DBPathAbs, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	rt, err := provider.NewRouter(cfg.Authority)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		env:      env,
		logger:   logger,
		store:    st,
		router:   rt,
		provider: provider.New(st, rt, provider.WithLogger(logger)),
		in:       in,
		out:      out,
		errOut:   errOut,
	}, nil
}

func (a *app) close() error {
	return a.store.Close()
}

// commands returns a fresh command set. Flag sets keep parsed values, so
// every dispatch builds its own.
func (a *app) commands() []*Command {
	return []*Command{
		a.initCmd(),
		a.insertCmd(),
		a.queryCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.typeCmd(),
		a.printConfigCmd(),
		a.shellCmd(),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// dispatch runs args[0] as a command with the rest as its arguments.
func (a *app) dispatch(ctx context.Context, args []string) int {
	cmd := findCommand(a.commands(), args[0])
	if cmd == nil {
		fprintln(a.errOut, "error:", fmt.Errorf("%w: %s", errUnknownCommand, args[0]))
		fprintln(a.errOut)
		printUsage(a.errOut)

		return 1
	}

	o := NewIO(a.out, a.errOut)

	code := cmd.Run(ctx, o, args[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

type globalFlags struct {
	workDir    string
	configPath string
	dbPath     string
	logLevel   string
	help       bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var g globalFlags

	fs := flag.NewFlagSet("shelter", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	fs.StringVarP(&g.configPath, "config", "c", "", "Use specified config `file`")
	fs.StringVar(&g.dbPath, "db", "", "Database file `path`")
	fs.StringVar(&g.logLevel, "log-level", "", "Log `level`: debug, info, warn, error")
	fs.BoolVarP(&g.help, "help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := fs.Parse(args)
	if err != nil {
		return globalFlags{}, err
	}

	g.remaining = fs.Args()

	return g, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer) {
	fprintln(w, `shelter - pet records behind content identifiers

Usage: shelter [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --db <path>        Database file (overrides db_path)
      --log-level <lvl>  debug, info, warn or error

Commands:`)

	var a app

	for _, c := range a.commands() {
		fprintln(w, c.HelpLine())
	}

	fprintln(w, `
Identifiers may be written in full (content://shelter/pets/3) or relative
to the configured authority (pets/3).`)
}

// resolveURI expands a relative identifier like "pets/3" to a full one.
func (a *app) resolveURI(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}

	return a.router.URI(arg)
}
