package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "sssg.yaml"))
	require.NoError(t, err)
	require.Equal(t, "./content", cfg.Content.Directory)
	require.Equal(t, "./_site", cfg.Output.Directory)
	require.Equal(t, []string{".md", ".markdown"}, cfg.Content.Extensions)
	require.Equal(t, 160, cfg.Build.SummaryLength)
	require.True(t, cfg.Build.FeedEnabled())
}

func TestLoad_File_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sssg.yaml")
	data := `
site:
  title: Test Blog
  base_url: https://blog.test
content:
  directory: ./posts
build:
  workers: 4
  feed: false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Blog", cfg.Site.Title)
	require.Equal(t, "./posts", cfg.Content.Directory)
	require.Equal(t, 4, cfg.Build.Workers)
	require.False(t, cfg.Build.FeedEnabled())
	// Unset values still pick up defaults.
	require.Equal(t, "./_site", cfg.Output.Directory)
	require.Equal(t, "github", cfg.Build.HighlightStyle)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SSSG_TEST_TITLE", "From Env")
	path := filepath.Join(t.TempDir(), "sssg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  title: ${SSSG_TEST_TITLE}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Site.Title)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sssg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: [unbalanced"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestInit_ExistingFileWithoutForce_Refused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sssg.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}

func TestInit_WrittenConfig_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sssg.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)
	require.True(t, cfg.Build.FeedEnabled())
}
