package file

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &domain.StateRecord{
		NextCursor:     "page-7",
		TotalProcessed: 420,
		History:        map[string]int{"Finance/Banking": 12, "Misc/Other": 3},
		LastRun:        time.Now().UTC().Truncate(time.Second),
		BackingStoreID: "memory",
	}

	if err := s.Save(ctx, "memory:default", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, "memory:default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NextCursor != rec.NextCursor {
		t.Errorf("cursor = %q, want %q", got.NextCursor, rec.NextCursor)
	}
	if got.TotalProcessed != rec.TotalProcessed {
		t.Errorf("total = %d, want %d", got.TotalProcessed, rec.TotalProcessed)
	}
	if len(got.History) != 2 || got.History["Finance/Banking"] != 12 {
		t.Errorf("history = %v", got.History)
	}
	if !got.LastRun.Equal(rec.LastRun) {
		t.Errorf("last run = %v, want %v", got.LastRun, rec.LastRun)
	}
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "never-saved")
	if !errors.Is(err, storage.ErrStateNotFound) {
		t.Fatalf("err = %v, want ErrStateNotFound", err)
	}
}

func TestLoadCorruptFileErrors(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.Path("bad"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Load(context.Background(), "bad"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "x", domain.NewStateRecord("memory")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(ctx, "x"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(ctx, "x"); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := s.Load(ctx, "x"); !errors.Is(err, storage.ErrStateNotFound) {
		t.Fatalf("Load after Clear = %v, want ErrStateNotFound", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Save(context.Background(), "x", domain.NewStateRecord("memory")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contains %v, want the single state file", names)
	}
}
