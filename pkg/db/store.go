package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InsertVocabulary saves a word. The triple is stored exactly as given.
// Saving an identical (word, origin, definition) triple again is a no-op and
// keeps the original record.
func InsertVocabulary(ctx context.Context, db DBExecutor, word, origin, definition, category string) error {
	if strings.TrimSpace(word) == "" {
		return &StoreWriteError{Op: "insert", Err: fmt.Errorf("word must be non-empty")}
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO vocabulary (id, word, origin, definition, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(word, origin, definition) DO NOTHING`,
		uuid.NewString(), word, origin, definition, category, time.Now().UTC(),
	)
	if err != nil {
		return &StoreWriteError{Op: "insert", Err: err}
	}
	return nil
}

// RemoveVocabulary deletes a saved word. It fails with ErrNotFound when no
// record matches, so a stale unsave is never silently accepted.
func RemoveVocabulary(ctx context.Context, db DBExecutor, word, origin, definition string) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM vocabulary WHERE word = ? AND origin = ? AND definition = ?`,
		word, origin, definition,
	)
	if err != nil {
		return &StoreWriteError{Op: "remove", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreWriteError{Op: "remove", Err: err}
	}
	if n == 0 {
		return &StoreWriteError{Op: "remove", Err: ErrNotFound}
	}
	return nil
}

// ListVocabulary returns saved words oldest first. An empty category
// returns every record.
func ListVocabulary(ctx context.Context, db DBExecutor, category string) ([]VocabularyRecord, error) {
	query := `SELECT id, word, origin, definition, category, created_at FROM vocabulary`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VocabularyRecord
	for rows.Next() {
		var r VocabularyRecord
		if err := rows.Scan(&r.ID, &r.Word, &r.Origin, &r.Definition, &r.Category, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Store is the vocabulary store over a SQLite connection.
type Store struct {
	conn *sql.DB
}

// NewStore wraps an initialized connection.
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) Insert(ctx context.Context, word, origin, definition, category string) error {
	return InsertVocabulary(ctx, s.conn, word, origin, definition, category)
}

func (s *Store) Remove(ctx context.Context, word, origin, definition string) error {
	return RemoveVocabulary(ctx, s.conn, word, origin, definition)
}

// ListAll returns every saved word for the review surface.
func (s *Store) ListAll(ctx context.Context) ([]VocabularyRecord, error) {
	return ListVocabulary(ctx, s.conn, "")
}

// ListCategory returns the saved words of one category.
func (s *Store) ListCategory(ctx context.Context, category string) ([]VocabularyRecord, error) {
	return ListVocabulary(ctx, s.conn, category)
}
