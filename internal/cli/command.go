package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags.
	// The FlagSet name is not used - command identity comes from Usage.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "shelter" in help.
	// Includes the command name and arguments/flags.
	// Examples: "type <uri>", "insert -s key=value... [uri]"
	Usage string

	// Short is a one-line description for the global help listing.
	Short string

	// Long is the full description shown in command help.
	// If empty, Short is used instead.
	Long string

	// Target, when set, makes the command take exactly one identifier.
	// Run resolves it and passes it to Exec as args[0].
	Target *Target

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

var (
	errURIRequired = errors.New("identifier is required")
	errTooManyArgs = errors.New("too many arguments")
)

// Target describes the identifier argument of a command.
type Target struct {
	// Default is used when no identifier is given. Empty makes it required.
	Default string

	// Resolve expands a relative identifier such as "pets/3" under the
	// configured authority.
	Resolve func(string) string
}

func (t *Target) resolve(args []string) (string, error) {
	switch len(args) {
	case 0:
		if t.Default == "" {
			return "", errURIRequired
		}

		return t.Resolve(t.Default), nil
	case 1:
		return t.Resolve(args[0]), nil
	default:
		return "", fmt.Errorf("%w: %s", errTooManyArgs, strings.Join(args[1:], " "))
	}
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help output for "shelter <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: shelter", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Target != nil {
		o.Println()

		if c.Target.Default != "" {
			o.Println("Identifier: content://<authority>/<path> or <path> (default: " + c.Target.Default + ")")
		} else {
			o.Println("Identifier: content://<authority>/<path> or <path> (required)")
		}
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses flags and executes the command. Returns exit code.
// Handles error printing internally for consistent output ordering.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	args = c.Flags.Args()

	if c.Target != nil {
		uri, targetErr := c.Target.resolve(args)
		if targetErr != nil {
			o.ErrPrintln("error:", targetErr)

			return 1
		}

		args = []string{uri}
	}

	err = c.Exec(ctx, o, args)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}
