package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"rom_dir": "/roms"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/roms/.collections", cfg.CollectionsDir)
	assert.Equal(t, "/roms/.collections/settings.toml", cfg.SettingsFile)
	assert.Equal(t, "/roms/.collections/history.db", cfg.DB.Path)
	assert.Equal(t, []string{"kodi"}, cfg.ExcludeNames)
	assert.Equal(t, []string{"retropie"}, cfg.NonGameSystems)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.IncludeUnknown)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"rom_dir": "/roms",
		"collections_dir": "/data/collections",
		"exclude_names": [],
		"include_unknown": true,
		"s3": {"host": "http://minio:9000", "bucket": "retro", "prefix": "backup"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/collections", cfg.CollectionsDir)
	assert.Equal(t, "/data/collections/settings.toml", cfg.SettingsFile)
	assert.Empty(t, cfg.ExcludeNames)
	assert.True(t, cfg.IncludeUnknown)
	assert.NoError(t, cfg.S3.Validate())
	assert.Equal(t, "backup", cfg.S3.Prefix)
}

func TestLoadRejectsMissingRomDir(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{"theme_dir": "/themes"}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFirstSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"rom_dir": "/roms"}`)

	cfg, err := LoadFirst("", filepath.Join(dir, "missing.json"), path)
	require.NoError(t, err)
	assert.Equal(t, "/roms", cfg.RomDir)

	_, err = LoadFirst(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestS3ValidateRequiresHostAndBucket(t *testing.T) {
	assert.Error(t, (&S3Config{Bucket: "b"}).Validate())
	assert.Error(t, (&S3Config{Host: "h"}).Validate())
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.True(t, s.UseCustomCollectionsSystem)
	assert.Empty(t, s.AutoList())

	s.SetLists([]string{"all", "favorites"}, []string{"Shmups", "Co-op (2)"})
	s.UseCustomCollectionsSystem = false
	require.NoError(t, SaveSettings(path, s))

	again, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "favorites"}, again.AutoList())
	assert.Equal(t, []string{"Shmups", "Co-op (2)"}, again.CustomList())
	assert.False(t, again.UseCustomCollectionsSystem)
}

func TestReadSettingsKeepsDefaultsForMissingKeys(t *testing.T) {
	s, err := ReadSettings(strings.NewReader(`collection_systems_auto = " recent, ,favorites "`))
	require.NoError(t, err)
	assert.Equal(t, []string{"recent", "favorites"}, s.AutoList())
	assert.True(t, s.UseCustomCollectionsSystem)

	var buf bytes.Buffer
	require.NoError(t, WriteSettings(&buf, s))
	assert.Contains(t, buf.String(), "use_custom_collections_system = true")

	_, err = ReadSettings(strings.NewReader(`collection_systems_auto = [`))
	assert.Error(t, err)
}
