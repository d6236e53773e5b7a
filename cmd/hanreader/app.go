package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/japaniel/hanreader/internal/config"
	"github.com/japaniel/hanreader/pkg/annotate"
	"github.com/japaniel/hanreader/pkg/db"
	"github.com/japaniel/hanreader/pkg/dictionary"
	"github.com/japaniel/hanreader/pkg/stem"
)

// app wires the store, stemmer, dictionary and engine for one command run.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	conn    *sql.DB
	store   *db.Store
	engine  *annotate.Engine
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	a.conn = conn
	a.store = db.NewStore(conn)
	a.closers = append(a.closers, conn.Close)

	resolver, err := buildResolver(cfg.Stemmer)
	if err != nil {
		a.Close()
		return nil, err
	}

	lookup, err := a.buildLookup(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = annotate.New(resolver, lookup, a.store,
		annotate.WithLogger(logger),
		annotate.WithCategory(cfg.Engine.Category),
		annotate.WithPrefetchWorkers(cfg.Engine.PrefetchWorkers),
	)
	if err := a.engine.Refresh(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load saved vocabulary: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.engine != nil {
		a.engine.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func buildResolver(cfg config.StemmerConfig) (stem.Resolver, error) {
	if cfg.Language == "ja" {
		var (
			k   *stem.Kagome
			err error
		)
		if cfg.KagomeDict != "" {
			k, err = stem.NewKagomeFromFile(cfg.KagomeDict)
		} else {
			k, err = stem.NewKagome(nil)
		}
		if err != nil {
			return nil, err
		}
		return k, nil
	}

	chain := stem.Chain{stem.NewKorean()}
	if cfg.KagomeDict != "" {
		k, err := stem.NewKagomeFromFile(cfg.KagomeDict)
		if err != nil {
			return nil, err
		}
		chain = append(chain, k)
	}
	return chain, nil
}

func (a *app) buildLookup(ctx context.Context) (dictionary.Lookup, error) {
	dc := a.cfg.Dictionary

	var lookup dictionary.Lookup
	switch dc.Mode {
	case config.ModeKrdict:
		lookup = dictionary.NewKrdict(dc.KrdictAPIKey, a.logger,
			dictionary.WithKrdictURL(dc.KrdictURL),
			dictionary.WithKrdictTimeout(dc.KrdictTimeout),
		)
	default:
		ix, err := a.loadIndex(ctx)
		if err != nil {
			return nil, err
		}
		lookup = ix
	}
	lookup = dictionary.NewInstrumentedLookup(lookup, dc.Mode, a.logger)

	if url := a.cfg.Cache.RedisURL; url != "" {
		cache, err := dictionary.NewRedisCache(ctx, url, a.cfg.Cache.TTL)
		if err != nil {
			a.logger.Warn("Redis cache unavailable, continuing without it", zap.Error(err))
		} else {
			a.closers = append(a.closers, cache.Close)
			lookup = dictionary.NewCachedLookup(lookup, cache, a.cfg.Stemmer.Language, a.logger)
		}
	}
	return lookup, nil
}

// loadIndex reads the offline dictionary, downloading it first when a URL
// is configured. A missing file without URL yields an empty index so that
// the vocabulary commands keep working.
func (a *app) loadIndex(ctx context.Context) (*dictionary.Index, error) {
	path := a.cfg.Dictionary.File
	if a.cfg.Dictionary.DownloadURL != "" {
		if err := dictionary.NewDownloader(a.cfg.Dictionary.DownloadURL, a.logger).Ensure(ctx, path); err != nil {
			a.logger.Warn("Dictionary download failed", zap.String("path", path), zap.Error(err))
		}
	}

	entries, err := dictionary.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("Dictionary file missing, lookups will be empty", zap.String("path", path))
		return dictionary.NewIndex(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}
	a.logger.Debug("Dictionary loaded", zap.String("path", path), zap.Int("entries", len(entries)))
	return dictionary.NewIndex(entries), nil
}

func fetchDict(ctx context.Context, cfg *config.Config, logger *zap.Logger, w io.Writer) error {
	path := cfg.Dictionary.File
	if err := dictionary.NewDownloader(cfg.Dictionary.DownloadURL, logger).Ensure(ctx, path); err != nil {
		return fmt.Errorf("fetch dictionary: %w", err)
	}
	entries, err := dictionary.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load dictionary %s: %w", path, err)
	}
	fmt.Fprintf(w, "Dictionary ready at %s (%d entries)\n", path, len(entries))
	return nil
}
