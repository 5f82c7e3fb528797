package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/documents_balanced.csv", cfg.Data.Path)
	assert.Equal(t, "model/document_classifier.joblib", cfg.Model.Path)
	assert.Equal(t, "v1", cfg.Model.Version)
	assert.Equal(t, 0.3, cfg.Training.TestRatio)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, 2, cfg.Training.MinDF)
	assert.Equal(t, 1000, cfg.Training.MaxIter)
	assert.Equal(t, "127.0.0.1:5001", cfg.Addr())
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "http:\n  port: 6000\n  read_timeout: 5s\ntraining:\n  seed: 7\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, int64(7), cfg.Training.Seed)
	assert.Equal(t, 0.3, cfg.Training.TestRatio)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("training:\n  test_ratio: 1.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_ratio")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestAddrHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  host: \"\"\n  port: 8080\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())

	cfg.Http.Host = "::1"
	assert.Equal(t, "[::1]:8080", cfg.Addr())
}
