package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/shelter/internal/cli"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func Test_Run_Prints_Usage_When_No_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun()
	cli.AssertContains(t, stdout, "Usage: shelter")
	cli.AssertContains(t, stdout, "insert -s key=value")
	cli.AssertContains(t, stdout, "print-config")

	stdout = c.MustRun("--help")
	cli.AssertContains(t, stdout, "Commands:")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("adopt")
	cli.AssertContains(t, stderr, "unknown command: adopt")
}

func Test_Run_Fails_When_Global_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("--nope", "query")
	cli.AssertContains(t, stderr, "unknown flag: --nope")
}

func Test_Run_Fails_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Dir, ".shelter.json"), `{"log_level": "loud"}`)

	stderr := c.MustFail("query")
	cli.AssertContains(t, stderr, "log_level")
}

func Test_Command_Prints_Help_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("insert", "--help")
	cli.AssertContains(t, stdout, "Usage: shelter insert")
	cli.AssertContains(t, stdout, "--set")

	_, err := os.Stat(c.DBPath())
	assert.True(t, os.IsNotExist(err), "help must not create the database")
}

func Test_Command_Fails_When_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("query", "--bogus")
	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: shelter query")
}

func Test_Db_Flag_Overrides_Config_When_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRun("--db", "other.db", "insert", "-s", "name=Rex")

	_, err := os.Stat(filepath.Join(c.Dir, "other.db"))
	require.NoError(t, err)

	assert.Equal(t, "", c.MustRun("query"), "default database must stay empty")
	assert.Equal(t, "1\tRex\tunknown breed\tunknown\t0", c.MustRun("--db=other.db", "query"))
}

func Test_Print_Config_Shows_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "db_path="+c.DBPath())
	cli.AssertContains(t, stdout, "authority=shelter")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_Shows_Sources_When_Files_Loaded(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, filepath.Join(c.Env["XDG_CONFIG_HOME"], "shelter", "config.json"), `{"log_level": "info"}`)
	writeFile(t, filepath.Join(c.Dir, "custom.json"), `{
		// comments are fine
		"db_path": "custom.db",
		"authority": "rescue",
	}`)

	stdout := c.MustRun("-c", "custom.json", "print-config")
	cli.AssertContains(t, stdout, "db_path="+filepath.Join(c.Dir, "custom.db"))
	cli.AssertContains(t, stdout, "authority=rescue")
	cli.AssertContains(t, stdout, "log_level=info")
	cli.AssertContains(t, stdout, "global_config=")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, "custom.json"))
}

func Test_Log_Level_Flag_Writes_Debug_Logs_To_Stderr(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr, code := c.Run("--log-level", "debug", "insert", "-s", "name=Rex")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "content://shelter/pets/1\n", stdout)
	cli.AssertContains(t, stderr, "op_id=")
	cli.AssertContains(t, stderr, "op=insert")
}
