package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/config/encoding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("write then read round trips the defaults", testWriteReadRoundTrip)
	t.Run("write refuses to clobber an existing file", testWriteRefusesClobber)
	t.Run("a partial file is overlaid on the defaults", testPartialFile)
	t.Run("reading a missing file fails", testReadMissing)
}

func testWriteReadRoundTrip(t *testing.T) {
	rootPath := t.TempDir()

	defaults := config.NewDefaultConfig()
	path, err := config.Write(rootPath, defaults)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rootPath, "config.toml"), path)

	got, err := config.Read(rootPath)
	require.NoError(t, err)
	assert.Equal(t, defaults, *got)
}

func testWriteRefusesClobber(t *testing.T) {
	rootPath := t.TempDir()

	_, err := config.Write(rootPath, config.NewDefaultConfig())
	require.NoError(t, err)

	_, err = config.Write(rootPath, config.NewDefaultConfig())
	require.Error(t, err)

	require.NoError(t, config.Remove(rootPath))
	_, err = config.Write(rootPath, config.NewDefaultConfig())
	require.NoError(t, err)
}

func testPartialFile(t *testing.T) {
	rootPath := t.TempDir()

	partial := `
[Snapshot]
  KeepFull = 5
  RetentionFull = "1440h"

[SQLStore.ConnectionConfig]
  Host = "db.internal"
`
	require.NoError(t, os.WriteFile(filepath.Join(rootPath, "config.toml"), []byte(partial), 0o644))

	got, err := config.Read(rootPath)
	require.NoError(t, err)

	assert.Equal(t, 5, got.Snapshot.KeepFull)
	assert.Equal(t, encoding.Duration{Duration: 1440 * time.Hour}, got.Snapshot.RetentionFull)
	assert.Equal(t, "db.internal", got.SQLStore.ConnectionConfig.Host)

	// everything not in the file keeps its default
	defaults := config.NewDefaultConfig()
	assert.Equal(t, defaults.Snapshot.KeepDefault, got.Snapshot.KeepDefault)
	assert.Equal(t, defaults.SQLStore.ConnectionConfig.Port, got.SQLStore.ConnectionConfig.Port)
}

func testReadMissing(t *testing.T) {
	_, err := config.Read(t.TempDir())
	require.Error(t, err)
}
