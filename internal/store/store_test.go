package store_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"streamwave/internal/store"
)

func newStore(t *testing.T, fs afero.Fs) *store.Store {
	t.Helper()
	s, err := store.New(fs, store.Config{Path: "data/records.json"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestInitialisesMissingFileWithDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	def := []map[string]any{{"id": 1, "name": "seed"}}
	s, err := store.New(fs, store.Config{Path: "data/records.json", Default: def})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if got := len(s.GetAll()); got != 1 {
		t.Fatalf("expected 1 default record, got %d", got)
	}
	exists, _ := afero.Exists(fs, "data/records.json")
	if !exists {
		t.Fatalf("expected backing file to be created")
	}
}

func TestCorruptBackingFileFailsWithStorageError(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "data/records.json", []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := store.New(fs, store.Config{Path: "data/records.json"})
	if !errors.Is(err, store.ErrStorageIO) {
		t.Fatalf("expected ErrStorageIO, got %v", err)
	}
}

func TestCrudLifecycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs)

	if _, err := s.Add(map[string]any{"id": 1, "username": "ann", "disabled": false}); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec, ok := s.GetByID(1)
	if !ok {
		t.Fatalf("expected record for id 1")
	}
	if rec["username"] != "ann" {
		t.Fatalf("expected username ann, got %v", rec["username"])
	}

	updated, ok, err := s.Update(1, map[string]any{"disabled": true})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated["disabled"] != true || updated["username"] != "ann" {
		t.Fatalf("unexpected merged record: %v", updated)
	}

	rec, _ = s.GetByID(1)
	if rec["disabled"] != true {
		t.Fatalf("update not visible through GetByID")
	}

	removed, err := s.Delete(1)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	if _, ok := s.GetByID(1); ok {
		t.Fatalf("expected record to be gone")
	}
	if removed, _ := s.Delete(1); removed {
		t.Fatalf("second delete should report false")
	}
}

func TestEmptyPartialUpdateStillPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs)
	if _, err := s.Add(map[string]any{"id": 7, "name": "keep"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	before, _ := afero.ReadFile(fs, "data/records.json")

	rec, ok, err := s.Update(7, map[string]any{})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if rec["name"] != "keep" {
		t.Fatalf("empty partial changed the record: %v", rec)
	}

	after, _ := afero.ReadFile(fs, "data/records.json")
	if string(before) != string(after) {
		t.Fatalf("record content should be unchanged on disk")
	}
}

func TestUpdateMissingRecordReportsAbsence(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs())
	rec, ok, err := s.Update(99, map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok || rec != nil {
		t.Fatalf("expected absence, got %v", rec)
	}
}

type flatItem struct {
	ID   int
	Name string
}

func (f flatItem) Flatten() map[string]any {
	return map[string]any{"id": f.ID, "name": f.Name}
}

func TestAddAcceptsFlattener(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs())
	if _, err := s.Add(flatItem{ID: 3, Name: "flat"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	rec, ok := s.GetByID(3)
	if !ok || rec["name"] != "flat" {
		t.Fatalf("flattened record not stored: %v", rec)
	}

	if _, err := s.Add(42); err == nil {
		t.Fatalf("expected error for non-record item")
	}
}

func TestPersistenceSurvivesReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs)
	if _, err := s.Add(map[string]any{"id": 1, "title": "one"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(map[string]any{"id": 2, "title": "two"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened := newStore(t, fs)
	if got := len(reopened.GetAll()); got != 2 {
		t.Fatalf("expected 2 records after reopen, got %d", got)
	}
	// JSON decoding turns the stored ids into float64; lookup by int must
	// still match.
	if _, ok := reopened.GetByID(2); !ok {
		t.Fatalf("expected id 2 to resolve after reopen")
	}
}

func TestReloadDiscardsNothingAfterSynchronousWrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs)
	if _, err := s.Add(map[string]any{"id": 5}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := s.GetByID(5); !ok {
		t.Fatalf("record lost across reload")
	}
}

func TestGetAllReturnsIsolatedCopy(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs())
	if _, err := s.Add(map[string]any{"id": 1, "name": "orig"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	all := s.GetAll()
	all[0]["name"] = "mutated"

	rec, _ := s.GetByID(1)
	if rec["name"] != "orig" {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestNextID(t *testing.T) {
	s := newStore(t, afero.NewMemMapFs())
	if got := s.NextID(); got != 1 {
		t.Fatalf("empty store NextID = %d, want 1", got)
	}
	s.Add(map[string]any{"id": 4})
	s.Add(map[string]any{"id": 2})
	if got := s.NextID(); got != 5 {
		t.Fatalf("NextID = %d, want 5", got)
	}
}

func TestConcurrentMutations(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newStore(t, fs)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			if _, err := s.Add(map[string]any{"id": n, "n": n}); err != nil {
				t.Errorf("add %d: %v", n, err)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := len(s.GetAll()); got != 8 {
		t.Fatalf("expected 8 records, got %d", got)
	}
	reopened := newStore(t, fs)
	if got := len(reopened.GetAll()); got != 8 {
		t.Fatalf("expected 8 persisted records, got %d", got)
	}
}
