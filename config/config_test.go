package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projsweep/projsweep/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.ScanPaths)
	assert.Contains(t, cfg.Ignore.Directories, "node_modules")
	assert.Contains(t, cfg.Ignore.Extensions, "log")
	assert.Equal(t, 10, cfg.Scan.MaxDepth)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24, cfg.Cache.ExpiryHours)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.ScanPaths = []string{"/code", "/work"}
	cfg.Scan.MaxDepth = 5
	cfg.Cache.ExpiryHours = 48

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/code", "/work"}, loaded.ScanPaths)
	assert.Equal(t, 5, loaded.Scan.MaxDepth)
	assert.Equal(t, 48, loaded.Cache.ExpiryHours)
	assert.ElementsMatch(t, cfg.Ignore.Directories, loaded.Ignore.Directories)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeIO, errors.GetCode(err))
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan_paths: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestToCacheConfig(t *testing.T) {
	cc := CacheConfig{Enabled: true, ExpiryHours: 12, MaxEntries: 50}.ToCacheConfig()

	assert.True(t, cc.Enabled)
	assert.Equal(t, 12*time.Hour, cc.ExpiryDuration)
	assert.Equal(t, 50, cc.MaxEntries)
}
