package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore keeps every collection in one embedded SQLite database.
// Records are stored as JSON text, one row each, ordered by a sequence
// number so insertion order survives the round trip. A collections table
// tracks which collections have been created, which is what Exists and the
// bootstrap routine key off.
//
// Writes replace the full collection content inside a transaction, matching
// the file backend's full-overwrite contract.
type SQLiteStore struct {
	db   *sql.DB
	path string
	cols map[string]*sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	seq INTEGER NOT NULL,
	doc TEXT NOT NULL,
	PRIMARY KEY (collection, seq)
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data directory %s: %w", ErrIO, dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %w", ErrIO, path, err)
	}
	// The driver is not safe for concurrent writers on one connection pool
	// against the same file; the per-collection mutexes below serialize our
	// access anyway, so a single connection is enough.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrIO, err)
	}
	s := &SQLiteStore{db: db, path: path, cols: make(map[string]*sync.Mutex, len(collections))}
	for _, name := range collections {
		s.cols[name] = &sync.Mutex{}
	}
	return s, nil
}

func (s *SQLiteStore) lock(collection string) (*sync.Mutex, error) {
	mu, ok := s.cols[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return mu, nil
}

// Read returns all records of the collection in insertion order. A
// collection that was never written yields an empty slice.
func (s *SQLiteStore) Read(ctx context.Context, collection string) ([]Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return s.readLocked(ctx, collection)
}

func (s *SQLiteStore) readLocked(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM records WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: select %s: %w", ErrIO, collection, err)
	}
	defer func() { _ = rows.Close() }()
	out := []Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", ErrIO, collection, err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("%w: decode %s record: %w", ErrIO, collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", ErrIO, collection, err)
	}
	return out, nil
}

// Write replaces the collection's stored content with records.
func (s *SQLiteStore) Write(ctx context.Context, collection string, records []Record) error {
	mu, err := s.lock(collection)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return s.writeLocked(ctx, collection, records)
}

func (s *SQLiteStore) writeLocked(ctx context.Context, collection string, records []Record) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", ErrIO, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, collection); err != nil {
		return fmt.Errorf("%w: register %s: %w", ErrIO, collection, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("%w: clear %s: %w", ErrIO, collection, err)
	}
	for i, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("%w: encode %s record: %w", ErrIO, collection, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (collection, seq, doc) VALUES (?, ?, ?)`, collection, i, string(doc)); err != nil {
			return fmt.Errorf("%w: insert %s record: %w", ErrIO, collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %w", ErrIO, collection, err)
	}
	return nil
}

// Update atomically applies fn to the collection's current records and
// persists the result.
func (s *SQLiteStore) Update(ctx context.Context, collection string, fn func([]Record) ([]Record, error)) ([]Record, error) {
	mu, err := s.lock(collection)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	current, err := s.readLocked(ctx, collection)
	if err != nil {
		return nil, err
	}
	rows, err := fn(current)
	if err != nil {
		return nil, err
	}
	if err := s.writeLocked(ctx, collection, rows); err != nil {
		return nil, err
	}
	return CloneRecords(rows), nil
}

// Exists reports whether the collection has been created.
func (s *SQLiteStore) Exists(ctx context.Context, collection string) (bool, error) {
	if _, err := s.lock(collection); err != nil {
		return false, err
	}
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM collections WHERE name = ?`, collection).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: lookup %s: %w", ErrIO, collection, err)
	}
	return true, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
