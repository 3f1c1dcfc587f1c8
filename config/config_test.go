package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imadenugraha/chacrab/config"
)

func TestSyncConfig_SaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	want := config.SyncConfig{
		Backend:            "sqlite",
		DatabaseURL:        "/home/user/.local/share/chacrab/vault.db",
		SessionTimeoutSecs: 300,
	}

	require.NoError(t, config.Save(path, want))

	got, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, want, *got)
}

func TestSyncConfig_LoadMissingFileReturnsNilNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	got, err := config.Load(path)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSyncConfig_PathPrefersOverride(t *testing.T) {
	p, err := config.Path("/explicit/path.json")
	require.NoError(t, err)
	require.Equal(t, "/explicit/path.json", p)
}

func TestSyncConfig_PathHonorsEnvVar(t *testing.T) {
	t.Setenv(config.EnvConfigPathKey, "/env/path.json")

	p, err := config.Path("")
	require.NoError(t, err)
	require.Equal(t, "/env/path.json", p)
}

func TestPreferences_LoadMissingFileYieldsEmptyDefaults(t *testing.T) {
	t.Setenv(config.EnvPreferencesPathKey, filepath.Join(t.TempDir(), "missing.toml"))

	p, err := config.LoadPreferences("")
	require.NoError(t, err)
	require.Empty(t, p.Clipboard.CopyCmd)
	require.Empty(t, p.Path())
}

func TestPreferences_RejectsPartialClipboardConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")

	require.NoError(t, os.WriteFile(path, []byte("[clipboard]\ncopy_cmd = [\"xsel\", \"-ib\"]\n"), 0o600))

	_, err := config.LoadPreferences(path)
	require.Error(t, err)

	var prefErr *config.PreferencesError
	require.ErrorAs(t, err, &prefErr)
	require.Equal(t, "clipboard", prefErr.Opt)
}

func TestPreferences_GenerateDefaultProducesValidTOML(t *testing.T) {
	out, err := config.GenerateDefault()
	require.NoError(t, err)
	require.NotEmpty(t, out)
}
