package dictionary

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Index is an in-memory Lookup over an offline dictionary file.
type Index struct {
	// Key: NFC-normalized headword, Value: entries with that headword.
	// Guarded by mu so the index can be reloaded while lookups run.
	mu      sync.RWMutex
	byWord  map[string][]FileEntry
	byID    map[string]FileEntry
	entries int
}

// NewIndex builds an index of the provided dictionary entries.
func NewIndex(entries []FileEntry) *Index {
	ix := &Index{}
	ix.Reload(entries)
	return ix
}

// Reload swaps the indexed entries.
func (ix *Index) Reload(entries []FileEntry) {
	byWord := make(map[string][]FileEntry)
	byID := make(map[string]FileEntry)
	for _, e := range entries {
		key := Normalize(e.Word)
		if key == "" {
			continue
		}
		byWord[key] = append(byWord[key], e)
		if e.ID != "" {
			byID[e.ID] = e
		}
	}
	// Homographs are returned in a stable order.
	for k := range byWord {
		list := byWord[k]
		sort.SliceStable(list, func(i, j int) bool { return lessID(list[i].ID, list[j].ID) })
	}

	ix.mu.Lock()
	ix.byWord = byWord
	ix.byID = byID
	ix.entries = len(entries)
	ix.mu.Unlock()
}

// Len returns the number of loaded entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entries
}

// Lookup returns, for each stem, the homographs of that stem followed by
// the related headwords they reference.
func (ix *Index) Lookup(ctx context.Context, stems []string) ([][]Entry, error) {
	out := make([][]Entry, len(stems))
	for i, stem := range stems {
		if err := ctx.Err(); err != nil {
			return out[:i], err
		}
		out[i] = ix.find(stem)
	}
	return out, nil
}

func (ix *Index) find(stem string) []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	primary := ix.byWord[Normalize(stem)]
	if len(primary) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(primary))
	var out []Entry
	add := func(e FileEntry) {
		id := e.ID
		if id == "" {
			id = e.Word + "\x00" + e.Origin + "\x00" + e.Gloss()
		}
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, Entry{Word: e.Word, Origin: e.Origin, Definition: e.Gloss()})
	}

	for _, e := range primary {
		add(e)
	}
	for _, e := range primary {
		for _, ref := range e.Related {
			if rel, ok := ix.byID[ref]; ok {
				add(rel)
			}
		}
	}
	return out
}

// Normalize returns the lookup form of a headword: trimmed and NFC-composed,
// so Hangul stored as conjoining jamo matches precomposed syllables.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
