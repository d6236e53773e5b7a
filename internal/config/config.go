// Package config loads the reader's settings from config.yaml and the
// environment.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Stemmer    StemmerConfig    `yaml:"stemmer"`
	Cache      CacheConfig      `yaml:"cache"`
	Engine     EngineConfig     `yaml:"engine"`
	Log        LogConfig        `yaml:"log"`
}

// DatabaseConfig locates the vocabulary database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"HANREADER_DB" env-default:"hanreader.db"`
}

// Dictionary modes.
const (
	ModeOffline = "offline"
	ModeKrdict  = "krdict"
)

// DictionaryConfig selects and configures the dictionary backend.
type DictionaryConfig struct {
	Mode          string        `yaml:"mode"           env:"DICT_MODE"           env-default:"offline"`
	File          string        `yaml:"file"           env:"DICT_FILE"           env-default:"dictionary.json"`
	DownloadURL   string        `yaml:"download_url"   env:"DICT_DOWNLOAD_URL"`
	KrdictAPIKey  string        `yaml:"krdict_api_key" env:"KRDICT_API_KEY"`
	KrdictURL     string        `yaml:"krdict_url"     env:"KRDICT_URL"          env-default:"https://krdict.korean.go.kr/api/search"`
	KrdictTimeout time.Duration `yaml:"krdict_timeout" env:"KRDICT_TIMEOUT"      env-default:"10s"`
}

// StemmerConfig selects the stem resolver.
type StemmerConfig struct {
	// Language is "ko" for the Korean suffix stripper or "ja" for kagome.
	Language   string `yaml:"language"    env:"STEMMER_LANGUAGE"    env-default:"ko"`
	// KagomeDict optionally points at a kagome dictionary zip used instead
	// of the bundled IPA dictionary.
	KagomeDict string `yaml:"kagome_dict" env:"STEMMER_KAGOME_DICT"`
}

// CacheConfig configures the Redis lookup cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl"       env:"CACHE_TTL" env-default:"168h"`
}

// EngineConfig tunes the annotation engine.
type EngineConfig struct {
	PrefetchWorkers int    `yaml:"prefetch_workers" env:"ENGINE_PREFETCH_WORKERS" env-default:"4"`
	Category        string `yaml:"category"         env:"ENGINE_CATEGORY"         env-default:"unorganized"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}
