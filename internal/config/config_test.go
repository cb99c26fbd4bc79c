package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "business_cards", cfg.Database.Database)
	assert.Equal(t, []string{"jpg", "jpeg", "png"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 25_000_000, cfg.Upload.MaxPixels)
	assert.Equal(t, 0.5, cfg.OCR.ConfidenceThreshold)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, 30*time.Minute, cfg.Cleanup.Interval)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
database:
  driver: sqlite
  database: cards
upload:
  allowed_types: [png]
ocr:
  confidence_threshold: 0.7
cleanup:
  interval: 10m
`)
	t.Setenv("DB_NAME", "from_env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from_env", cfg.Database.Database)
	assert.Equal(t, "from_env.db", cfg.Database.ResolvedSQLitePath())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"png"}, cfg.Upload.AllowedTypes)
	assert.Equal(t, 0.7, cfg.OCR.ConfidenceThreshold)
	assert.Equal(t, 10*time.Minute, cfg.Cleanup.Interval)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "server: [port"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"threshold above one", func(c *Config) { c.OCR.ConfidenceThreshold = 1.5 }},
		{"threshold negative", func(c *Config) { c.OCR.ConfidenceThreshold = -0.1 }},
		{"no allowed types", func(c *Config) { c.Upload.AllowedTypes = nil }},
		{"even block size", func(c *Config) { c.Pipeline.BlockSize = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsAllowedType(t *testing.T) {
	u := UploadConfig{AllowedTypes: []string{"jpg", "PNG"}}
	assert.True(t, u.IsAllowedType(".JPG"))
	assert.True(t, u.IsAllowedType("png"))
	assert.False(t, u.IsAllowedType("gif"))
	assert.False(t, u.IsAllowedType(""))
}

func TestValidate_MaxPixels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upload.MaxPixels = 0
	assert.ErrorContains(t, cfg.Validate(), "upload.max_pixels")
}
