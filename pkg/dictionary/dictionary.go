package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrLookupUnavailable is wrapped by every adapter when the backing
// dictionary service cannot answer (transport failure, bad status, timeout).
var ErrLookupUnavailable = errors.New("dictionary lookup unavailable")

// Entry is one dictionary definition for a stem.
// Word is the entry's own headword; adapters fill it with the stem when the
// source does not carry one, so every entry has the same shape.
type Entry struct {
	Word       string `json:"word"`
	Origin     string `json:"origin"`
	Definition string `json:"definition"`
}

// Lookup resolves stems to dictionary entries.
// The returned slice is index-aligned with stems; a stem without entries
// gets an empty (or nil) list.
type Lookup interface {
	Lookup(ctx context.Context, stems []string) ([][]Entry, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, stems []string) ([][]Entry, error)

func (f LookupFunc) Lookup(ctx context.Context, stems []string) ([][]Entry, error) {
	return f(ctx, stems)
}

// State tells a pending stem apart from one that resolved to nothing.
type State int

const (
	Pending State = iota
	Empty
	Resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Empty:
		return "empty"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the lookup outcome for a single stem.
type Result struct {
	State   State
	Entries []Entry
}

// ResultOf builds an Empty or Resolved result from a returned list.
func ResultOf(entries []Entry) Result {
	if len(entries) == 0 {
		return Result{State: Empty}
	}
	return Result{State: Resolved, Entries: entries}
}

// Align converts a lookup response into one Result per stem.
// Positions the response does not cover stay Pending.
func Align(stems []string, lists [][]Entry) []Result {
	out := make([]Result, len(stems))
	for i := range stems {
		if i < len(lists) {
			out[i] = ResultOf(normalize(stems[i], lists[i]))
		}
	}
	return out
}

func normalize(stem string, entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Word) == "" {
			e.Word = stem
		}
		out[i] = e
	}
	return out
}

// FileEntry is a headword record in an offline dictionary file.
type FileEntry struct {
	ID      string      `json:"id"`
	Word    string      `json:"word"`
	Origin  string      `json:"origin"`
	POS     string      `json:"pos"`
	Senses  []FileSense `json:"senses"`
	Related []string    `json:"related"`
}

// FileSense is one numbered sense of a headword.
type FileSense struct {
	Definition  string `json:"definition"`
	Translation string `json:"translation"`
}

// Gloss returns the short translated definition shown to the reader.
// The first translated sense wins; the Korean definition is the fallback.
func (e FileEntry) Gloss() string {
	for _, s := range e.Senses {
		if t := strings.TrimSpace(s.Translation); t != "" {
			return t
		}
	}
	for _, s := range e.Senses {
		if d := strings.TrimSpace(s.Definition); d != "" {
			return d
		}
	}
	return ""
}

// LoadFile reads a dictionary file, either {"words": [...]} or a bare array.
func LoadFile(path string) ([]FileEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads dictionary entries from r. See LoadFile for accepted shapes.
func Decode(r io.Reader) ([]FileEntry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Words []FileEntry `json:"words"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Words, nil
	}

	var entries []FileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary as object or array: %w", err)
	}
	return entries, nil
}
