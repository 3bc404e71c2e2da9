// Package store implements the generic file-backed record store. One Store
// instance owns the in-memory collection and the JSON-array backing file for
// a single entity kind; every mutation rewrites the file in full.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// ErrStorageIO wraps unreadable or unwritable backing file conditions. It is
// fatal to the affected store instance.
var ErrStorageIO = errors.New("record store: storage failure")

// Flattener is implemented by typed entities that can produce their own flat
// record. Add accepts either a Flattener or a pre-flattened record.
type Flattener interface {
	Flatten() map[string]any
}

// Config holds the construction parameters for a store instance.
type Config struct {
	// Path is the backing file location.
	Path string
	// IDField names the identifier field matched by GetByID, Update and
	// Delete. Defaults to "id".
	IDField string
	// Default is written to the backing file when it does not exist yet.
	Default []map[string]any
}

// Store is a durable mapping from an identifier field to flat records.
// It is safe for concurrent use: reads share a read lock, and every mutation
// holds the write lock across both the in-memory change and the file rewrite
// so concurrent writers cannot interleave their file writes.
type Store struct {
	fs      afero.Fs
	path    string
	idField string

	mu      sync.RWMutex
	records []map[string]any
}

// New opens the store, reading the backing file or initialising it with
// cfg.Default when absent.
func New(fs afero.Fs, cfg Config) (*Store, error) {
	if cfg.IDField == "" {
		cfg.IDField = "id"
	}
	s := &Store{
		fs:      fs,
		path:    cfg.Path,
		idField: cfg.IDField,
	}

	exists, err := afero.Exists(fs, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageIO, cfg.Path, err)
	}
	if !exists {
		s.records = cloneRecords(cfg.Default)
		if err := s.persist(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStorageIO, s.path, err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrStorageIO, s.path, err)
	}
	s.records = records
	return nil
}

// persist rewrites the backing file with the entire collection. The write
// goes to a temp file first and is renamed into place so a crash mid-write
// cannot corrupt the previous contents. Callers must hold the write lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageIO, s.path, err)
	}
	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrStorageIO, dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageIO, tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrStorageIO, tmp, err)
	}
	return nil
}

// Reload re-reads the backing file, discarding in-memory state. Since every
// mutation persists synchronously there should be nothing to discard.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetAll returns a copy of every record. Mutating the result does not affect
// the store.
func (s *Store) GetAll() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// GetByID returns a copy of the first record whose id field matches.
// Absence is not an error.
func (s *Store) GetByID(id any) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if sameID(rec[s.idField], id) {
			return cloneRecord(rec), true
		}
	}
	return nil, false
}

// Add appends a record, or the flattened form of a Flattener, and persists.
// Duplicate identifiers are not checked; callers enforce uniqueness.
func (s *Store) Add(item any) (map[string]any, error) {
	var rec map[string]any
	switch v := item.(type) {
	case map[string]any:
		rec = cloneRecord(v)
	case Flattener:
		rec = v.Flatten()
	default:
		return nil, fmt.Errorf("record store: item %T is neither a record nor a Flattener", item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := s.persist(); err != nil {
		return nil, err
	}
	return cloneRecord(rec), nil
}

// Update shallow-merges fields into the matching record and persists. The
// rewrite happens even when fields is empty. Returns the merged record, or
// false when no record matches.
func (s *Store) Update(id any, fields map[string]any) (map[string]any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if !sameID(rec[s.idField], id) {
			continue
		}
		for k, v := range fields {
			rec[k] = v
		}
		if err := s.persist(); err != nil {
			return nil, false, err
		}
		return cloneRecord(rec), true, nil
	}
	return nil, false, nil
}

// Delete removes the first matching record and persists. It reports whether
// a removal occurred.
func (s *Store) Delete(id any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if !sameID(rec[s.idField], id) {
			continue
		}
		s.records = append(s.records[:i], s.records[i+1:]...)
		if err := s.persist(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// NextID returns one more than the highest numeric id currently stored.
// Identifier assignment stays with the caller; NextID only suggests the next
// free value.
func (s *Store) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 1
	for _, rec := range s.records {
		if n, ok := asInt(rec[s.idField]); ok && n >= next {
			next = n + 1
		}
	}
	return next
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// sameID compares identifier values across the numeric representations that
// JSON decoding produces.
func sameID(a, b any) bool {
	if an, ok := asInt(a); ok {
		bn, ok := asInt(b)
		return ok && an == bn
	}
	return a == b
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func cloneRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneRecords(records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = cloneRecord(rec)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []int:
		out := make([]int, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}

// NewOsFs is a convenience for production callers that also ensures the
// parent data directory exists.
func NewOsFs(dataDir string) (afero.Fs, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", ErrStorageIO, dataDir, err)
	}
	return afero.NewOsFs(), nil
}
