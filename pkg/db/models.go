package db

import (
	"errors"
	"fmt"
	"time"
)

// DefaultCategory is assigned to every newly saved word.
const DefaultCategory = "unorganized"

// VocabularyRecord is a saved word.
type VocabularyRecord struct {
	ID         string
	Word       string
	Origin     string // Hanja
	Definition string
	Category   string
	CreatedAt  time.Time
}

// ErrNotFound is wrapped by Remove when no record matches.
var ErrNotFound = errors.New("vocabulary record not found")

// StoreWriteError reports a failed insert or remove.
type StoreWriteError struct {
	Op  string // "insert" or "remove"
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("vocabulary %s: %v", e.Op, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
