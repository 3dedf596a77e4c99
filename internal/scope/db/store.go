// Package db provides the test repositories that feed the search session.
package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
)

// SnapshotFile is the JSONL file a FileStore reads and writes
const SnapshotFile = "tests.jsonl"

// maxLineSize bounds a single snapshot line; long passages make big documents
const maxLineSize = 16 * 1024 * 1024

// FileStore is a local JSONL snapshot of the Test Repository
type FileStore struct {
	dataDir  string
	mu       sync.RWMutex
	tests    []catalog.TestDocument // In-memory cache
	modified bool
}

// NewFileStore opens the snapshot in dataDir, creating the directory if needed
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		dataDir: dataDir,
		tests:   make([]catalog.TestDocument, 0),
	}

	// Load existing data if present
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return s, nil
}

// Name returns the source name
func (s *FileStore) Name() string {
	return "file"
}

// Path returns the snapshot file path
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, SnapshotFile)
}

// Add adds a test, replacing any test with the same ID
func (s *FileStore) Add(test catalog.TestDocument) error {
	if test.ID == "" {
		return fmt.Errorf("test id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tests {
		if s.tests[i].ID == test.ID {
			s.tests[i] = test
			s.modified = true
			return nil
		}
	}

	s.tests = append(s.tests, test)
	s.modified = true
	return nil
}

// Replace swaps the whole snapshot contents
func (s *FileStore) Replace(tests []catalog.TestDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests = append(make([]catalog.TestDocument, 0, len(tests)), tests...)
	s.modified = true
}

// ListTests returns up to limit tests in snapshot order
func (s *FileStore) ListTests(ctx context.Context, limit int) ([]catalog.TestDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.tests)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]catalog.TestDocument, n)
	copy(out, s.tests[:n])
	return out, nil
}

// Count returns the number of tests in the snapshot
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tests)
}

// Flush writes the snapshot to disk
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modified {
		return nil // No changes to write
	}

	if err := s.write(); err != nil {
		return err
	}

	s.modified = false
	return nil
}

// Close flushes and closes the store
func (s *FileStore) Close() error {
	return s.Flush()
}

// write replaces the snapshot file via a temp file and rename
func (s *FileStore) write() error {
	path := s.Path()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	for i := range s.tests {
		if err := encoder.Encode(s.tests[i]); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to encode test %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// load reads the snapshot from disk. Lines that do not fit the schema
// are kept as invalid tests rather than failing the whole load.
func (s *FileStore) load() error {
	f, err := os.Open(s.Path())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var items []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		items = append(items, append(json.RawMessage(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.tests = catalog.DecodeTests(items)
	return nil
}
