package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "turncore dev")
}

func TestCheck_DemoModule(t *testing.T) {
	out, err := runRoot(t, "check", "--log-level", "error", "../../modules/demo")
	require.NoError(t, err)
	assert.Contains(t, out, "The Sunken Keep: 2 areas, 4 actors")
}

func TestCheck_MissingModule(t *testing.T) {
	_, err := runRoot(t, "check", "--log-level", "error", t.TempDir())
	assert.Error(t, err)
}

func TestModuleDirs(t *testing.T) {
	_, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, moduleDirs([]string{"a", "b"}))
	// No resources file: just the base module.
	cfg.Resources = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Equal(t, []string{cfg.BaseModule}, moduleDirs(nil))
}
