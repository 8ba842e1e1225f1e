package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore persists each collection as a pretty-printed JSON array in
// <dir>/<collection>.json. Parsed records are cached in memory; a fsnotify
// watcher on the data directory drops the cache entry when a collection file
// is modified externally, so hand-editing the JSON while a dev process runs
// is picked up on the next read.
//
// Writes go to a temporary file which is then renamed over the target, so a
// crash mid-write never leaves a truncated collection behind.
type FileStore struct {
	dir     string
	watcher *fsnotify.Watcher
	cols    map[string]*fileCollection
}

// fileCollection guards one collection's cache and serializes its
// read-modify-write cycles. The RWMutex lets concurrent readers of a warm
// cache proceed in parallel; loads, writes and invalidation take the write
// lock.
type fileCollection struct {
	mu     sync.RWMutex
	rows   []Record
	loaded bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the data directory if needed and starts watching it
// for external edits.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory %s: %w", ErrIO, dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s := &FileStore{
		dir:     dir,
		watcher: watcher,
		cols:    make(map[string]*fileCollection, len(collections)),
	}
	for _, name := range collections {
		s.cols[name] = &fileCollection{}
	}
	go s.watch()
	return s, nil
}

// watch invalidates cached collections when their files change on disk. Our
// own writes land here too; the reload they force on the next read is
// harmless for a dev-scale store.
func (s *FileStore) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, ok := strings.CutSuffix(filepath.Base(event.Name), ".json")
			if !ok {
				continue
			}
			col, ok := s.cols[name]
			if !ok {
				continue
			}
			col.mu.Lock()
			col.rows = nil
			col.loaded = false
			col.mu.Unlock()
			slog.Debug("Collection file changed on disk", "collection", name, "op", event.Op.String())
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Error watching data directory", "dir", s.dir, "err", err)
		}
	}
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) collection(name string) (*fileCollection, error) {
	col, ok := s.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return col, nil
}

// Read returns all records of the collection in insertion order. A missing
// backing file yields an empty slice.
func (s *FileStore) Read(_ context.Context, collection string) ([]Record, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	col.mu.RLock()
	if col.loaded {
		rows := CloneRecords(col.rows)
		col.mu.RUnlock()
		return rows, nil
	}
	col.mu.RUnlock()
	col.mu.Lock()
	defer col.mu.Unlock()
	if err := s.loadLocked(collection, col); err != nil {
		return nil, err
	}
	return CloneRecords(col.rows), nil
}

// loadLocked fills the cache from disk if it is not current. col.mu must be
// held.
func (s *FileStore) loadLocked(collection string, col *fileCollection) error {
	if col.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			col.rows = []Record{}
			col.loaded = true
			return nil
		}
		return fmt.Errorf("%w: read collection %s: %w", ErrIO, collection, err)
	}
	var rows []Record
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: parse collection %s: %w", ErrIO, collection, err)
	}
	col.rows = rows
	col.loaded = true
	return nil
}

// Write replaces the collection's stored content with records.
func (s *FileStore) Write(_ context.Context, collection string, records []Record) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	return s.writeLocked(collection, col, records)
}

// writeLocked persists records atomically and refreshes the cache. col.mu
// must be held.
func (s *FileStore) writeLocked(collection string, col *fileCollection, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal collection %s: %w", ErrIO, collection, err)
	}
	path := s.path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: write collection %s: %w", ErrIO, collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace collection %s: %w", ErrIO, collection, err)
	}
	col.rows = CloneRecords(records)
	col.loaded = true
	return nil
}

// Update atomically applies fn to the collection's current records and
// persists the result.
func (s *FileStore) Update(_ context.Context, collection string, fn func([]Record) ([]Record, error)) ([]Record, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	if err := s.loadLocked(collection, col); err != nil {
		return nil, err
	}
	rows, err := fn(CloneRecords(col.rows))
	if err != nil {
		return nil, err
	}
	if err := s.writeLocked(collection, col, rows); err != nil {
		return nil, err
	}
	return CloneRecords(rows), nil
}

// Exists reports whether the collection's backing file has been created.
func (s *FileStore) Exists(_ context.Context, collection string) (bool, error) {
	if _, err := s.collection(collection); err != nil {
		return false, err
	}
	if _, err := os.Stat(s.path(collection)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat collection %s: %w", ErrIO, collection, err)
	}
	return true, nil
}

// Close stops the directory watcher.
func (s *FileStore) Close() error {
	return s.watcher.Close()
}
