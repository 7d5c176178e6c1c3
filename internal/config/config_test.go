package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/shelter/internal/config"
	"github.com/calvinalkan/shelter/internal/provider"
	"github.com/calvinalkan/shelter/internal/router"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// isolatedEnv points the global config at an empty directory.
func isolatedEnv(t *testing.T) map[string]string {
	t.Helper()

	return map[string]string{"XDG_CONFIG_HOME": filepath.Join(t.TempDir(), "xdg")}
}

func Test_Load_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: isolatedEnv(t)})
	require.NoError(t, err)

	want := config.Default()
	want.EffectiveCwd = dir
	want.DBPathAbs = filepath.Join(dir, ".shelter", "shelter.db")

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func Test_Load_Applies_Precedence_When_All_Sources_Present(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env := isolatedEnv(t)

	writeFile(t, filepath.Join(env["XDG_CONFIG_HOME"], "shelter", "config.json"), `{
		// global
		"db_path": "global.db",
		"authority": "kennel",
		"log_format": "json",
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{"db_path": "project.db", "log_level": "info"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: env})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "project.db"), cfg.DBPathAbs)
	assert.Equal(t, "kennel", cfg.Authority)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, filepath.Join(env["XDG_CONFIG_HOME"], "shelter", "config.json"), cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Sources.Project)

	cfg, err = config.Load(config.LoadInput{
		WorkDirOverride:  dir,
		Env:              env,
		DBPathOverride:   "/abs/flag.db",
		LogLevelOverride: "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "/abs/flag.db", cfg.DBPathAbs)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Load_Uses_Home_When_XDG_Unset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	home := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "shelter", "config.json"), `{"authority": "home"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": home}})
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Authority)
}

func Test_Load_Reads_Explicit_Config_Instead_Of_Project_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, config.FileName), `{"db_path": "project.db"}`)
	writeFile(t, filepath.Join(dir, "custom.json"), `{"db_path": "custom.db"}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, ConfigPath: "custom.json", Env: isolatedEnv(t)})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DBPathAbs)
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.Sources.Project)
}

func Test_Load_Returns_Error_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"broken json", `{"db_path": `, config.ErrConfigInvalid},
		{"empty db path", `{"db_path": ""}`, config.ErrDBPathEmpty},
		{"empty authority", `{"authority": ""}`, config.ErrAuthorityInvalid},
		{"authority with slash", `{"authority": "a/b"}`, config.ErrAuthorityInvalid},
		{"authority with port", `{"authority": "a:b"}`, config.ErrAuthorityInvalid},
		{"authority with userinfo", `{"authority": "user@host"}`, config.ErrAuthorityInvalid},
		{"authority with percent", `{"authority": "a%20b"}`, config.ErrAuthorityInvalid},
		{"unknown key", `{"owner": "x"}`, config.ErrConfigInvalid},
		{"bad level", `{"log_level": "loud"}`, config.ErrLogLevelInvalid},
		{"bad format", `{"log_format": "xml"}`, config.ErrLogFormatInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, config.FileName), tc.content)

			_, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: isolatedEnv(t)})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func Test_Load_Returns_ErrConfigFileNotFound_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.LoadInput{WorkDirOverride: t.TempDir(), ConfigPath: "nope.json", Env: isolatedEnv(t)})
	require.ErrorIs(t, err, config.ErrConfigFileNotFound)
}

func Test_Write_Round_Trips_Through_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	in := config.Default()
	in.DBPath = "data/pets.db"
	in.Authority = "rescue"

	require.NoError(t, config.Write(filepath.Join(dir, config.FileName), in))

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: isolatedEnv(t)})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "pets.db"), cfg.DBPathAbs)
	assert.Equal(t, "rescue", cfg.Authority)

	// Overwrite leaves exactly one file behind.
	in.Authority = "other"
	require.NoError(t, config.Write(filepath.Join(dir, config.FileName), in))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func Test_Validate_Accepts_Only_Authorities_That_Route(t *testing.T) {
	t.Parallel()

	for _, authority := range []string{"shelter", "rescue-01", "pets.example.org", "My_Shelter"} {
		cfg := config.Default()
		cfg.Authority = authority

		require.NoError(t, config.Validate(cfg), authority)

		rt, err := provider.NewRouter(authority)
		require.NoError(t, err)
		assert.Equal(t, router.Collection, rt.Match(rt.URI("pets")).Kind, authority)
		assert.Equal(t, router.Item, rt.Match(rt.URI("pets/7")).Kind, authority)
	}

	for _, authority := range []string{"", "a:b", "user@host", "a b", "a/b", "ä"} {
		cfg := config.Default()
		cfg.Authority = authority

		require.ErrorIs(t, config.Validate(cfg), config.ErrAuthorityInvalid, authority)
	}
}
