package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
database:
  path: "/tmp/vocab.db"

dictionary:
  mode: "krdict"
  krdict_api_key: "test-key"
  krdict_timeout: "3s"

stemmer:
  language: "ja"

cache:
  redis_url: "redis://localhost:6379/0"
  ttl: "1h"

engine:
  prefetch_workers: 8

log:
  level: "debug"
  format: "json"
`

func TestLoadValidYAML(t *testing.T) {
	t.Setenv(PathEnv, writeYAML(t, validYAML))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vocab.db", cfg.Database.Path)
	assert.Equal(t, ModeKrdict, cfg.Dictionary.Mode)
	assert.Equal(t, "test-key", cfg.Dictionary.KrdictAPIKey)
	assert.Equal(t, 3*time.Second, cfg.Dictionary.KrdictTimeout)
	assert.Equal(t, "https://krdict.korean.go.kr/api/search", cfg.Dictionary.KrdictURL)
	assert.Equal(t, "ja", cfg.Stemmer.Language)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Engine.PrefetchWorkers)
	assert.Equal(t, "unorganized", cfg.Engine.Category)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadENVOverridesYAML(t *testing.T) {
	t.Setenv(PathEnv, writeYAML(t, validYAML))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ENGINE_PREFETCH_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Engine.PrefetchWorkers)
}

func TestLoadNoFileUsesDefaults(t *testing.T) {
	t.Setenv(PathEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "hanreader.db", cfg.Database.Path)
	assert.Equal(t, ModeOffline, cfg.Dictionary.Mode)
	assert.Equal(t, "dictionary.json", cfg.Dictionary.File)
	assert.Equal(t, "ko", cfg.Stemmer.Language)
	assert.Equal(t, 4, cfg.Engine.PrefetchWorkers)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadExplicitPathNotFound(t *testing.T) {
	t.Setenv(PathEnv, "/nonexistent/config.yaml")
	_, err := Load()
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Database:   DatabaseConfig{Path: "hanreader.db"},
		Dictionary: DictionaryConfig{Mode: ModeOffline, File: "dictionary.json", KrdictTimeout: time.Second},
		Stemmer:    StemmerConfig{Language: "ko"},
		Cache:      CacheConfig{TTL: time.Hour},
		Engine:     EngineConfig{PrefetchWorkers: 4, Category: "unorganized"},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, false},
		{"unknown mode", func(c *Config) { c.Dictionary.Mode = "online" }, false},
		{"offline without file", func(c *Config) { c.Dictionary.File = "" }, false},
		{"krdict without key", func(c *Config) { c.Dictionary.Mode = ModeKrdict }, false},
		{"krdict with key", func(c *Config) {
			c.Dictionary.Mode = ModeKrdict
			c.Dictionary.KrdictAPIKey = "k"
		}, true},
		{"unknown language", func(c *Config) { c.Stemmer.Language = "zh" }, false},
		{"redis without ttl", func(c *Config) {
			c.Cache.RedisURL = "redis://localhost:6379"
			c.Cache.TTL = 0
		}, false},
		{"no workers", func(c *Config) { c.Engine.PrefetchWorkers = 0 }, false},
		{"too many workers", func(c *Config) { c.Engine.PrefetchWorkers = 65 }, false},
		{"empty category", func(c *Config) { c.Engine.Category = "" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "text" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
