package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://example.com/wp-json/wp/v2", cfg.Source.BaseURL)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 100, cfg.Source.PageSize)
	assert.Equal(t, StoreDriverMySQL, cfg.Store.Driver)
	assert.Equal(t, AssetBackendLocal, cfg.Assets.Backend)
	assert.Equal(t, int64(25<<20), cfg.Assets.MaxBytes)
	assert.False(t, cfg.AssetCache.Enable)
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOntoDefaults(t *testing.T) {
	path := writeConfig(t, `
locale: de
source:
  url: https://blog.example.org/wp-json/wp/v2/
  per_page: 50
  max_pages: 3
  timeout_seconds: 5
store:
  driver: MongoDB
  mongo:
    uri: mongodb://db:27017
    collection: docs
assets:
  backend: gridfs
asset_cache:
  enable: true
  redis:
    host: cache
    db: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Locale)
	assert.Equal(t, "https://blog.example.org/wp-json/wp/v2", cfg.Source.BaseURL)
	assert.Equal(t, 50, cfg.Source.PageSize)
	assert.Equal(t, 3, cfg.Source.MaxPages)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.Mongo.URI)
	assert.Equal(t, "docs", cfg.Store.Mongo.Collection)
	assert.Equal(t, "content", cfg.Store.Mongo.Database)
	assert.Equal(t, AssetBackendGridFS, cfg.Assets.Backend)
	assert.True(t, cfg.AssetCache.Enable)
	assert.Equal(t, "redis://cache:6379/2", cfg.AssetCache.Redis.URLValue())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "sourse:\n  url: x\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvSourceURL, "https://env.example.com/wp-json/wp/v2")
	t.Setenv(EnvDefaultLocale, "fr")
	path := writeConfig(t, "locale: de\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/wp-json/wp/v2", cfg.Source.BaseURL)
	assert.Equal(t, "fr", cfg.Locale)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"s3 without credentials", func(c *AppConfig) { c.Assets.Backend = AssetBackendS3; c.Assets.S3.Bucket = "b" }},
		{"gridfs with mysql", func(c *AppConfig) { c.Assets.Backend = AssetBackendGridFS }},
		{"unknown driver", func(c *AppConfig) { c.Store.Driver = "sqlite" }},
		{"page size", func(c *AppConfig) { c.Source.PageSize = 500 }},
		{"database port", func(c *AppConfig) { c.Store.Database.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestDSNValue(t *testing.T) {
	cfg := Default().Store.Database
	dsn := cfg.DSNValue()
	assert.Contains(t, dsn, "root:password@tcp(127.0.0.1:3306)/content?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	cfg.DSN = "u:p@tcp(h:1)/x"
	assert.Equal(t, "u:p@tcp(h:1)/x", cfg.DSNValue())
}
