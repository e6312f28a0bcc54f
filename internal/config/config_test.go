package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	config, err := Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), config)
}

func TestLoadLayersFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{
		// only what differs from the defaults
		api: { page_size: 50, country_code: "US" },
		paths: { db: "store/events.db" },
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eventsnap.local.json5"), []byte(`{
		api: { request_delay_ms: 1000 },
	}`), 0644))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	chdir(t, nested)

	config, err := Load()
	require.NoError(t, err)
	require.Equal(t, 50, config.Api.PageSize)
	require.Equal(t, "US", config.Api.CountryCode)
	require.Equal(t, "Music", config.Api.Classification)
	require.Equal(t, int64(1000), config.Api.RequestDelay().Milliseconds())
	require.Equal(t, "store/events.db", config.Paths.DB)
	require.Equal(t, Defaults().Paths.History, config.Paths.History)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TICKETMASTER_API_KEY=from-dotenv\nEVENTSNAP_DB=libsql://events.example.com\n"), 0644))
	chdir(t, dir)

	t.Setenv("TICKETMASTER_API_KEY", "from-process")
	t.Setenv("EVENTSNAP_DB", "")
	env, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, "from-process", env.ApiKey)
}

func TestLoadEnvWithoutDotenv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TICKETMASTER_API_KEY", "")
	env, err := LoadEnv()
	require.NoError(t, err)
	require.Empty(t, env.ApiKey)
}
