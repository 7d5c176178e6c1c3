package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/shelter/internal/cli"
)

func newTargetCommand(def string, got *[]string) *cli.Command {
	return &cli.Command{
		Flags:  flag.NewFlagSet("show", flag.ContinueOnError),
		Usage:  "show [uri]",
		Short:  "Show a pet",
		Target: &cli.Target{Default: def, Resolve: func(s string) string { return "content://test/" + s }},
		Exec: func(_ context.Context, o *cli.IO, args []string) error {
			*got = args
			o.PrintRow(args...)

			return nil
		},
	}
}

func Test_Command_Resolves_Target_When_Identifier_Given(t *testing.T) {
	t.Parallel()

	var got []string

	var out, errOut bytes.Buffer

	code := newTargetCommand("", &got).Run(t.Context(), cli.NewIO(&out, &errOut), []string{"pets/3"})
	assert.Equal(t, 0, code, errOut.String())
	assert.Equal(t, []string{"content://test/pets/3"}, got)
	assert.Equal(t, "content://test/pets/3\n", out.String())
}

func Test_Command_Uses_Default_Target_When_Identifier_Omitted(t *testing.T) {
	t.Parallel()

	var got []string

	code := newTargetCommand("pets", &got).Run(t.Context(), cli.NewIO(&bytes.Buffer{}, &bytes.Buffer{}), nil)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"content://test/pets"}, got)
}

func Test_Command_Fails_Before_Exec_When_Target_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		def  string
		args []string
		want string
	}{
		{"", nil, "identifier is required"},
		{"pets", []string{"pets/1", "pets/2"}, "too many arguments: pets/2"},
	}

	for _, tc := range cases {
		var got []string

		var errOut bytes.Buffer

		code := newTargetCommand(tc.def, &got).Run(t.Context(), cli.NewIO(&bytes.Buffer{}, &errOut), tc.args)
		assert.Equal(t, 1, code)
		assert.Nil(t, got, "exec must not run")
		cli.AssertContains(t, errOut.String(), tc.want)
	}
}

func Test_Command_Help_Describes_Target(t *testing.T) {
	t.Parallel()

	var got []string

	var out bytes.Buffer

	code := newTargetCommand("pets", &got).Run(t.Context(), cli.NewIO(&out, &bytes.Buffer{}), []string{"--help"})
	assert.Equal(t, 0, code)
	cli.AssertContains(t, out.String(), "Usage: shelter show [uri]")
	cli.AssertContains(t, out.String(), "(default: pets)")
	assert.True(t, strings.HasPrefix(out.String(), "Usage:"))
}

func Test_Run_Reads_Empty_Input_When_Reader_Nil(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var out, errOut bytes.Buffer

	code := cli.Run(nil, &out, &errOut, []string{"shelter", "--cwd", dir, "shell"},
		map[string]string{"XDG_CONFIG_HOME": dir + "/.xdg"}, nil)
	assert.Equal(t, 0, code, errOut.String())
	cli.AssertContains(t, out.String(), "shelter shell")
}
