package memory

import (
	"context"
	"testing"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
)

func seed(p *Provider, ids ...string) {
	for _, id := range ids {
		p.AddMessage(domain.Message{ID: id, Sender: id + "@example.com"})
	}
}

func TestListPaginates(t *testing.T) {
	p := NewProvider()
	seed(p, "a", "b", "c", "d", "e")
	ctx := context.Background()

	var got []string
	cursor := ""
	pages := 0
	for {
		res, err := p.List(ctx, "", 2, cursor)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		pages++
		for _, m := range res.Messages {
			got = append(got, m.ID)
		}
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s (insertion order)", i, got[i], want[i])
		}
	}
}

func TestListFiltersByLabel(t *testing.T) {
	p := NewProvider()
	p.AddMessage(domain.Message{ID: "tagged", Labels: map[string]struct{}{"Work": {}}})
	seed(p, "plain")

	res, err := p.List(context.Background(), "label:Work", 10, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(res.Messages) != 1 || res.Messages[0].ID != "tagged" {
		t.Errorf("Messages = %v, want [tagged]", res.Messages)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	p := NewProvider()
	_, err := p.List(context.Background(), "", 10, "not-a-number")
	if mailstore.KindOf(err) != mailstore.KindPermanent {
		t.Errorf("KindOf = %v, want KindPermanent", mailstore.KindOf(err))
	}
}

func TestApplyBatchMutates(t *testing.T) {
	p := NewProvider()
	seed(p, "m1")
	err := p.ApplyBatch(context.Background(), []*domain.Action{{
		MessageID:    "m1",
		AddLabels:    []string{"Work"},
		RemoveLabels: []string{"INBOX"},
		Star:         true,
	}})
	if err != nil {
		t.Fatalf("ApplyBatch() error = %v", err)
	}

	msg, ok := p.Message("m1")
	if !ok {
		t.Fatal("message vanished")
	}
	if !msg.HasLabel("Work") || msg.HasLabel("INBOX") {
		t.Errorf("labels = %v", msg.Labels)
	}
	if !msg.IsStarred {
		t.Error("IsStarred = false, want true")
	}
}

func TestApplyBatchUnknownMessage(t *testing.T) {
	p := NewProvider()
	err := p.ApplyBatch(context.Background(), []*domain.Action{{MessageID: "ghost"}})
	if mailstore.KindOf(err) != mailstore.KindPermanent {
		t.Errorf("KindOf = %v, want KindPermanent", mailstore.KindOf(err))
	}
}

func TestFaultInjection(t *testing.T) {
	p := NewProvider()
	seed(p, "m1")
	p.FailApplyTimes = 1

	err := p.ApplyBatch(context.Background(), []*domain.Action{{MessageID: "m1", Star: true}})
	if !mailstore.Retryable(err) {
		t.Fatalf("first ApplyBatch error = %v, want retryable throttle", err)
	}
	if err := p.ApplyBatch(context.Background(), []*domain.Action{{MessageID: "m1", Star: true}}); err != nil {
		t.Fatalf("second ApplyBatch() error = %v", err)
	}
	if got := p.ApplyCalls(); got != 2 {
		t.Errorf("ApplyCalls = %d, want 2", got)
	}
}

func TestBatchGetDetailsSkipsMissing(t *testing.T) {
	p := NewProvider()
	seed(p, "m1", "m2")

	got, err := p.BatchGetDetails(context.Background(), []string{"m1", "ghost", "m2"})
	if err != nil {
		t.Fatalf("BatchGetDetails() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("details = %d, want 2 (missing id skipped)", len(got))
	}
	if _, ok := got["ghost"]; ok {
		t.Error("ghost present in details")
	}
}
