package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(""))
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SITEUTIL_SITE_NAME=FromDotEnv\n"), 0o600))
	t.Setenv("SITEUTIL_SITE_NAME", "")
	require.NoError(t, os.Unsetenv("SITEUTIL_SITE_NAME"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "FromDotEnv", os.Getenv("SITEUTIL_SITE_NAME"))

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "FromDotEnv", cfg.Site.Name)
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SITEUTIL_SITE_NAME=FromDotEnv\n"), 0o600))
	t.Setenv("SITEUTIL_SITE_NAME", "FromShell")

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "FromShell", os.Getenv("SITEUTIL_SITE_NAME"))
}

func TestLoadConfigFrom(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("site:\n  name: FromFile\n"), 0o600))

	cfg, err := LoadConfigFrom(file)
	require.NoError(t, err)
	require.Equal(t, "FromFile", cfg.Site.Name)

	cfg, err = LoadConfigFrom(dir)
	require.NoError(t, err)
	require.Equal(t, "FromFile", cfg.Site.Name)

	_, err = LoadConfigFrom(filepath.Join(dir, "nope"))
	require.ErrorContains(t, err, "does not exist")
}
