package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func setupFileStore(t *testing.T) (*FileStore, string) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func TestFileStoreOnDiskFormat(t *testing.T) {
	store, dir := setupFileStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, Users, []Record{{"id": "u1", "email": "u1@x.com"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("reading backing file: %v", err)
	}
	// Pretty-printed array of records.
	if !strings.HasPrefix(string(data), "[\n  {") {
		t.Errorf("backing file is not a pretty-printed array:\n%s", data)
	}
	var rows []Record
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("backing file is not valid JSON: %v", err)
	}
	if len(rows) != 1 || rows[0].ID() != "u1" {
		t.Errorf("unexpected file content: %v", rows)
	}

	// The temp file used for the atomic replace must not linger.
	if _, err := os.Stat(filepath.Join(dir, "users.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestFileStoreEmptyWrite(t *testing.T) {
	store, dir := setupFileStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, Wallet, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "wallet.json"))
	if err != nil {
		t.Fatalf("reading backing file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("nil records must serialize as an empty array, got %q", data)
	}
}

func TestFileStorePicksUpExternalEdits(t *testing.T) {
	store, dir := setupFileStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, Studies, []Record{{"id": "s1"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := store.Read(ctx, Studies); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// Simulate a developer hand-editing the collection file.
	edited := `[{"id": "s1"}, {"id": "s2-by-hand"}]`
	if err := os.WriteFile(filepath.Join(dir, "studies.json"), []byte(edited), 0o644); err != nil {
		t.Fatalf("external write failed: %v", err)
	}

	// The watcher delivers asynchronously; poll until the reload lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		rows, err := store.Read(ctx, Studies)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(rows) == 2 && rows[1].ID() == "s2-by-hand" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("external edit never picked up, still %v", rows)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFileStoreParallelReadsAndWrites(t *testing.T) {
	store, _ := setupFileStore(t)
	ctx := context.Background()
	if err := store.Write(ctx, Studies, []Record{{"id": "s1"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := store.Read(ctx, Studies); err != nil {
					t.Errorf("Read failed: %v", err)
					return
				}
			}
		}()
	}
	const writers = 4
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Update(ctx, Studies, func(rows []Record) ([]Record, error) {
				return append(rows, Record{"id": fmt.Sprintf("w%d", i)}), nil
			}); err != nil {
				t.Errorf("Update %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.Read(ctx, Studies)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != writers+1 {
		t.Errorf("got %d rows, want %d", len(got), writers+1)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	store, dir := setupFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}
	// Invalidation may race with the read; poll until the store sees the
	// corrupt content, then assert the error classification.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := store.Read(ctx, Profiles)
		if err != nil {
			if !errors.Is(err, ErrIO) {
				t.Fatalf("expected ErrIO, got %v", err)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("corrupt file never surfaced as a read error")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
