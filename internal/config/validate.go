package config

import (
	"fmt"
	"slices"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	languages  = []string{"ko", "ja"}
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	switch c.Dictionary.Mode {
	case ModeOffline:
		if c.Dictionary.File == "" {
			return fmt.Errorf("dictionary.file is required in offline mode")
		}
	case ModeKrdict:
		if c.Dictionary.KrdictAPIKey == "" {
			return fmt.Errorf("dictionary.krdict_api_key is required in krdict mode")
		}
		if c.Dictionary.KrdictTimeout <= 0 {
			return fmt.Errorf("dictionary.krdict_timeout must be > 0 (got %v)", c.Dictionary.KrdictTimeout)
		}
	default:
		return fmt.Errorf("dictionary.mode must be %q or %q (got %q)", ModeOffline, ModeKrdict, c.Dictionary.Mode)
	}

	if !slices.Contains(languages, c.Stemmer.Language) {
		return fmt.Errorf("stemmer.language must be one of %v (got %q)", languages, c.Stemmer.Language)
	}

	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
	}

	if c.Engine.PrefetchWorkers < 1 || c.Engine.PrefetchWorkers > 64 {
		return fmt.Errorf("engine.prefetch_workers must be in [1, 64] (got %d)", c.Engine.PrefetchWorkers)
	}
	if c.Engine.Category == "" {
		return fmt.Errorf("engine.category must not be empty")
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	return nil
}
