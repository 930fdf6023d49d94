package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/turncore/engine"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, c.RoundMillis)
	assert.Empty(t, c.LogLevel, "empty level defers to LOG_LEVEL")
	assert.Equal(t, "turncore.db", c.SaveDB)
	assert.Equal(t, engine.DefaultTiming, c.Timing())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("round_millis: 1000\nlog_format: json\nseed: 42\n"), 0o644))
	t.Setenv("TURNCORE_LOG_LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, c.RoundMillis)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Len(t, c.EngineOptions(), 3)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("round_millis: 0\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "round_millis must be positive")
}

func TestActiveResources_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "res", "resources.yaml")
	ar := ActiveResources{Campaign: "campaigns/first", Mods: []string{"mods/extra"}}
	require.NoError(t, ar.Write(path))

	got := ReadActiveResources(path)
	assert.Equal(t, ar, got)
	assert.Equal(t, []string{"base", "campaigns/first", "mods/extra"}, got.Directories("base"))
}

func TestActiveResources_DegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, ActiveResources{}, ReadActiveResources(filepath.Join(dir, "none.yaml")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("mods: [unclosed"), 0o644))
	ar := ReadActiveResources(bad)
	assert.Empty(t, ar.Mods)
	assert.Equal(t, []string{"base"}, ar.Directories("base"))
}
