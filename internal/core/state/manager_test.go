package state

import (
	"context"
	"errors"
	"testing"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage/memory"
)

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()

	m := NewManager(ctx, repo, "memory:default", "memory")
	if m.IsResumable() {
		t.Fatal("fresh manager should not be resumable")
	}

	hist := m.History()
	hist["Finance/Banking"] = 3
	m.Save(ctx, "cursor-2", "has:nouserlabels", 150, hist)

	// A second manager over the same repo sees the checkpoint.
	m2 := NewManager(ctx, repo, "memory:default", "memory")
	if !m2.IsResumable() {
		t.Fatal("expected resumable state")
	}
	if m2.Cursor() != "cursor-2" {
		t.Errorf("cursor = %q", m2.Cursor())
	}
	if m2.Total() != 150 {
		t.Errorf("total = %d", m2.Total())
	}
	if m2.History()["Finance/Banking"] != 3 {
		t.Errorf("history = %v", m2.History())
	}
	if m2.LastRun().IsZero() {
		t.Error("last run not stamped")
	}
}

func TestManagerClear(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()

	m := NewManager(ctx, repo, "id", "memory")
	m.Save(ctx, "tok", "q", 10, map[string]int{"x": 1})
	m.Clear(ctx)

	if m.IsResumable() {
		t.Error("cleared manager still resumable")
	}
	if m.Total() != 0 {
		t.Errorf("total = %d after clear", m.Total())
	}
	if _, err := repo.Load(ctx, "id"); !errors.Is(err, storage.ErrStateNotFound) {
		t.Errorf("record still persisted after clear: %v", err)
	}
}

type failingRepo struct{}

func (failingRepo) Load(ctx context.Context, id string) (*domain.StateRecord, error) {
	return nil, errors.New("disk on fire")
}
func (failingRepo) Save(ctx context.Context, id string, rec *domain.StateRecord) error {
	return errors.New("disk on fire")
}
func (failingRepo) Clear(ctx context.Context, id string) error {
	return errors.New("disk on fire")
}

func TestManagerSurvivesBrokenRepository(t *testing.T) {
	ctx := context.Background()

	// Load failure degrades to defaults, save/clear failures only log.
	m := NewManager(ctx, failingRepo{}, "id", "memory")
	if m.IsResumable() || m.Total() != 0 {
		t.Error("broken repo should yield default state")
	}
	m.Save(ctx, "tok", "q", 5, map[string]int{})
	m.Clear(ctx)
}

func TestResumeCursorPolicy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	m := NewManager(ctx, repo, "id", "memory")
	const stable = "has:nouserlabels"
	m.Save(ctx, "stored-cursor", stable, 1, map[string]int{})

	tests := []struct {
		name  string
		mode  ResumeMode
		query string
		want  string
	}{
		{"auto with stable query resumes", ResumeAuto, stable, "stored-cursor"},
		{"auto with mutating query restarts", ResumeAuto, "label:Misc/Other", ""},
		{"never always restarts", ResumeNever, stable, ""},
		{"always trusts the cursor", ResumeAlways, "label:Misc/Other", "stored-cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ResumeCursor(tt.mode, tt.query, stable); got != tt.want {
				t.Errorf("ResumeCursor(%s, %q) = %q, want %q", tt.mode, tt.query, got, tt.want)
			}
		})
	}
}

func TestResumeCursorRejectsForeignQueryCursor(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()

	// A sweep over a different query leaves its own cursor behind.
	m := NewManager(ctx, repo, "id", "memory")
	m.Save(ctx, "sweep-cursor", "label:Important", 10, map[string]int{})

	// A later run over the stable query must not trust that offset,
	// even though mode and query shape would otherwise allow it.
	m2 := NewManager(ctx, repo, "id", "memory")
	const stable = "has:nouserlabels"
	if got := m2.ResumeCursor(ResumeAuto, stable, stable); got != "" {
		t.Errorf("ResumeCursor = %q, want restart over foreign-query cursor", got)
	}

	// ResumeAlways remains the explicit override.
	if got := m2.ResumeCursor(ResumeAlways, stable, stable); got != "sweep-cursor" {
		t.Errorf("ResumeCursor(always) = %q, want sweep-cursor", got)
	}

	// Once the stable query saves its own cursor, auto resumes again.
	m2.Save(ctx, "own-cursor", stable, 20, map[string]int{})
	if got := m2.ResumeCursor(ResumeAuto, stable, stable); got != "own-cursor" {
		t.Errorf("ResumeCursor = %q, want own-cursor", got)
	}
}
