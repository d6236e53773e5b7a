// Package annotate is the word lookup and annotation state of a reading
// session: it loads dictionary entries for tapped words and tracks which
// words are expanded, which entries are saved, and which Hanja is selected.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/japaniel/hanreader/pkg/db"
	"github.com/japaniel/hanreader/pkg/dictionary"
	"github.com/japaniel/hanreader/pkg/metrics"
	"github.com/japaniel/hanreader/pkg/stem"
	"github.com/japaniel/hanreader/pkg/wordid"
)

// ErrClosed is returned by write operations after Close.
var ErrClosed = errors.New("annotate: engine closed")

// Store is the durable vocabulary list.
type Store interface {
	Insert(ctx context.Context, word, origin, definition, category string) error
	Remove(ctx context.Context, word, origin, definition string) error
	ListAll(ctx context.Context) ([]db.VocabularyRecord, error)
}

// Definitions is the lookup state of one highlighted word.
type Definitions struct {
	Word    string
	// Loading is set while the word's stems are not known yet.
	Loading bool
	Stems   []string
	// Results[i] belongs to Stems[i].
	Results []dictionary.Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithCategory sets the category new vocabulary is saved under.
func WithCategory(c string) Option { return func(e *Engine) { e.category = c } }

// WithPrefetchWorkers bounds the concurrency of Prefetch.
func WithPrefetchWorkers(n int) Option { return func(e *Engine) { e.workers = n } }

// Engine holds the annotation state of one reading screen. It is safe for
// concurrent use. Create one per screen with New and Close it on exit.
type Engine struct {
	stems    stem.Resolver
	dict     dictionary.Lookup
	store    Store
	logger   *zap.Logger
	category string
	workers  int

	loads singleflight.Group
	pool  *WorkerPool
	stop  context.CancelFunc

	mu       sync.Mutex
	closed   bool
	gen      uint64
	words    map[string]*wordSlot
	expanded map[string]bool
	saved    map[wordid.Identity]bool
	savedVer uint64
	hanja    string
	hasHanja bool

	queueMu sync.Mutex
	queues  map[wordid.Identity]*saveQueue
}

type wordSlot struct {
	gen  uint64
	defs Definitions
	// done is set once stems and entries both resolved; failed loads are
	// retried by the next LoadDefinitions.
	done bool
}

// New creates an engine with empty state.
func New(resolver stem.Resolver, lookup dictionary.Lookup, store Store, opts ...Option) *Engine {
	e := &Engine{
		stems:    resolver,
		dict:     lookup,
		store:    store,
		logger:   zap.NewNop(),
		category: db.DefaultCategory,
		workers:  4,
		words:    make(map[string]*wordSlot),
		expanded: make(map[string]bool),
		saved:    make(map[wordid.Identity]bool),
		queues:   make(map[wordid.Identity]*saveQueue),
	}
	for _, o := range opts {
		o(e)
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.stop = cancel
	e.pool = NewWorkerPool(e.workers, e.workers*2)
	e.pool.Start(ctx)
	return e
}

// Close discards all session state. Results of lookups still in flight are
// dropped when they arrive.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.words = make(map[string]*wordSlot)
	e.expanded = make(map[string]bool)
	e.saved = make(map[wordid.Identity]bool)
	e.hasHanja, e.hanja = false, ""
	e.mu.Unlock()

	e.stop()
	e.pool.Close()
}

// LoadDefinitions resolves the stems of word and looks them up. Concurrent
// calls for the same word share one resolution, and a successful load is
// kept for the rest of the session. Lookup failures are never returned:
// the affected stems simply stay pending.
func (e *Engine) LoadDefinitions(ctx context.Context, word string) Definitions {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Definitions{Word: word, Loading: true}
	}
	slot, ok := e.words[word]
	if ok && slot.done {
		defs := slot.defs
		e.mu.Unlock()
		return defs
	}
	if !ok {
		e.gen++
		slot = &wordSlot{gen: e.gen, defs: Definitions{Word: word, Loading: true}}
		e.words[word] = slot
	}
	gen := slot.gen
	e.mu.Unlock()

	key := strconv.FormatUint(gen, 10) + "\x00" + word
	v, _, _ := e.loads.Do(key, func() (interface{}, error) {
		defs, done := e.fetch(ctx, word)
		return e.apply(word, gen, defs, done), nil
	})
	return v.(Definitions)
}

// fetch runs stem resolution and then the dictionary lookup. The second
// step depends on the first, so they never overlap for one word.
func (e *Engine) fetch(ctx context.Context, word string) (Definitions, bool) {
	defs := Definitions{Word: word, Loading: true}

	start := time.Now()
	stems, err := e.stems.Resolve(ctx, word)
	metrics.LookupDuration.WithLabelValues("stem").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LookupsTotal.WithLabelValues("stem", "error").Inc()
		e.logger.Warn("Stem resolution failed", zap.String("word", word), zap.Error(err))
		return defs, false
	}
	metrics.LookupsTotal.WithLabelValues("stem", "ok").Inc()

	defs.Loading = false
	defs.Stems = stems
	defs.Results = make([]dictionary.Result, len(stems))
	if len(stems) == 0 {
		return defs, true
	}

	lists, err := e.dict.Lookup(ctx, stems)
	if err != nil {
		e.logger.Warn("Dictionary lookup failed",
			zap.String("word", word),
			zap.Strings("stems", stems),
			zap.Error(err),
		)
		return defs, false
	}
	defs.Results = dictionary.Align(stems, lists)
	return defs, len(lists) >= len(stems)
}

func (e *Engine) apply(word string, gen uint64, defs Definitions, done bool) Definitions {
	e.mu.Lock()
	defer e.mu.Unlock()
	slot, ok := e.words[word]
	if e.closed || !ok || slot.gen != gen {
		metrics.DroppedResultsTotal.Inc()
		e.logger.Debug("Dropping stale lookup result", zap.String("word", word))
		return defs
	}
	keepKnown(&defs, slot.defs)
	slot.defs = defs
	slot.done = done
	return defs
}

// keepKnown copies results an earlier attempt already resolved into
// positions that defs left pending. Only applies when both attempts saw the
// same stems.
func keepKnown(defs *Definitions, old Definitions) {
	if defs.Loading || old.Loading || !slices.Equal(defs.Stems, old.Stems) {
		return
	}
	for i, r := range defs.Results {
		if r.State == dictionary.Pending && old.Results[i].State != dictionary.Pending {
			defs.Results[i] = old.Results[i]
		}
	}
}

// Definitions returns what is currently known about word without loading.
func (e *Engine) Definitions(word string) (Definitions, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	slot, ok := e.words[word]
	if !ok {
		return Definitions{}, false
	}
	return slot.defs, true
}

// Forget drops the loaded definitions of word. A load in flight for it
// will not be applied.
func (e *Engine) Forget(word string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.words, word)
}

// Prefetch loads several words concurrently and returns when all of them
// have been attempted or ctx is done.
func (e *Engine) Prefetch(ctx context.Context, words ...string) error {
	var wg sync.WaitGroup
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		w := w
		wg.Add(1)
		err := e.pool.SubmitCtx(ctx, func(jobCtx context.Context) {
			defer wg.Done()
			if jobCtx.Err() != nil {
				return
			}
			e.LoadDefinitions(ctx, w)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("prefetch %q: %w", w, err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ToggleExpanded flips whether all entries of word are shown and returns
// the new state.
func (e *Engine) ToggleExpanded(word string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expanded[word] {
		delete(e.expanded, word)
		return false
	}
	e.expanded[word] = true
	return true
}

// IsExpanded reports whether word is expanded.
func (e *Engine) IsExpanded(word string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expanded[word]
}

// IsSaved reports whether the entry is in the vocabulary list.
func (e *Engine) IsSaved(id wordid.Identity) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved[id]
}

// SelectHanja shows the detail of one Hanja character, replacing any
// character shown before.
func (e *Engine) SelectHanja(g string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hanja, e.hasHanja = g, true
}

// ClearHanjaSelection dismisses the Hanja detail.
func (e *Engine) ClearHanjaSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hanja, e.hasHanja = "", false
}

// HanjaSelection returns the selected character, if any.
func (e *Engine) HanjaSelection() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hanja, e.hasHanja
}
