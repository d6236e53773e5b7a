package annotate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/hanreader/pkg/db"
	"github.com/japaniel/hanreader/pkg/dictionary"
	"github.com/japaniel/hanreader/pkg/wordid"
)

// fakeResolver returns canned stems. When gate is set every call blocks
// until it is closed, after signalling on entered.
type fakeResolver struct {
	stems   map[string][]string
	err     error
	calls   int32
	gate    chan struct{}
	entered chan struct{}
}

func (r *fakeResolver) Resolve(ctx context.Context, word string) ([]string, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.gate != nil {
		if r.entered != nil {
			r.entered <- struct{}{}
		}
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.stems[word], nil
}

type fakeLookup struct {
	entries map[string][]dictionary.Entry
	err     error
	// short truncates the response to this many lists when positive.
	short   int
	calls   int32
}

func (l *fakeLookup) Lookup(ctx context.Context, stems []string) ([][]dictionary.Entry, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.err != nil {
		return nil, l.err
	}
	out := make([][]dictionary.Entry, len(stems))
	for i, s := range stems {
		out[i] = l.entries[s]
	}
	if l.short > 0 && l.short < len(out) {
		out = out[:l.short]
	}
	return out, nil
}

type storeCall struct {
	Op         string
	Word       string
	Origin     string
	Definition string
	Category   string
}

// fakeStore records every call in order. failWith, when set, is returned
// by the next write instead of touching the records.
type fakeStore struct {
	mu       sync.Mutex
	calls    []storeCall
	records  map[wordid.Identity]db.VocabularyRecord
	failWith error
	delay    time.Duration
	// listEntered, when set, is closed by the first ListAll after it read
	// the records; that call then waits for listGate.
	listEntered chan struct{}
	listGate    chan struct{}
	listOnce    sync.Once
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[wordid.Identity]db.VocabularyRecord)}
}

func (s *fakeStore) Insert(ctx context.Context, word, origin, definition, category string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{"insert", word, origin, definition, category})
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.records[wordid.Of(word, origin, definition)] = db.VocabularyRecord{
		Word: word, Origin: origin, Definition: definition, Category: category,
	}
	return nil
}

func (s *fakeStore) Remove(ctx context.Context, word, origin, definition string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{Op: "remove", Word: word, Origin: origin, Definition: definition})
	if err := s.takeFailure(); err != nil {
		return err
	}
	id := wordid.Of(word, origin, definition)
	if _, ok := s.records[id]; !ok {
		return &db.StoreWriteError{Op: "remove", Err: db.ErrNotFound}
	}
	delete(s.records, id)
	return nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]db.VocabularyRecord, error) {
	s.mu.Lock()
	out := make([]db.VocabularyRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.Unlock()

	if s.listEntered != nil {
		first := false
		s.listOnce.Do(func() { first = true })
		if first {
			close(s.listEntered)
			<-s.listGate
		}
	}
	return out, nil
}

func (s *fakeStore) takeFailure() error {
	err := s.failWith
	s.failWith = nil
	return err
}

func (s *fakeStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *fakeStore) Calls() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeCall(nil), s.calls...)
}

func (s *fakeStore) count(op string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func sarangFixture() (*fakeResolver, *fakeLookup) {
	r := &fakeResolver{stems: map[string][]string{"사랑": {"사랑"}}}
	l := &fakeLookup{entries: map[string][]dictionary.Entry{
		"사랑": {
			{Origin: "愛", Definition: "love"},
			{Origin: "思量", Definition: "deep thought"},
		},
	}}
	return r, l
}
