package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalvchavan/streamsmt/internal/config"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

func TestLoad_Defaults(t *testing.T) {
	log, _ := logger.NewForTest()
	c, err := config.Load("", log)
	require.NoError(t, err)
	assert.Equal(t, "classpath", c.MappingSource)
	assert.Equal(t, 30, c.HotReloadIntervalSeconds)
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapping_location: custom/path.json\nhot_reload_enabled: true\n"), 0o600))

	log, _ := logger.NewForTest()
	c, err := config.Load(path, log)
	require.NoError(t, err)
	assert.Equal(t, "custom/path.json", c.MappingLocation)
	assert.True(t, c.HotReloadEnabled)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hot_reload_interval_seconds: 60\n"), 0o600))
	t.Setenv("SMT_HOT_RELOAD_INTERVAL_SECONDS", "90")

	log, _ := logger.NewForTest()
	c, err := config.Load(path, log)
	require.NoError(t, err)
	assert.Equal(t, 90, c.HotReloadIntervalSeconds)
}

func TestLoad_RemoteBucketImpliesS3Source(t *testing.T) {
	t.Setenv("SMT_REMOTE_BUCKET", "my-bucket")

	log, _ := logger.NewForTest()
	c, err := config.Load("", log)
	require.NoError(t, err)
	assert.Equal(t, "s3", c.MappingSource)
}

func TestValidate_RejectsMissingMappingLocation(t *testing.T) {
	c := config.Config{MappingSource: "classpath", HotReloadIntervalSeconds: 1, ReloadRetryAttempts: 1}
	assert.Error(t, c.Validate())
}
