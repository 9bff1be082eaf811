package pipeline

import (
	"fmt"
	"testing"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

func TestGroupActionsBucketsIdenticalMutations(t *testing.T) {
	actions := []*domain.Action{
		{MessageID: "a", AddLabels: []string{"Work"}, Archive: true},
		{MessageID: "b", AddLabels: []string{"Finance"}},
		{MessageID: "c", AddLabels: []string{"Work"}, Archive: true},
		{MessageID: "d", AddLabels: []string{"Work"}}, // no archive: distinct
	}

	groups := groupActions(actions)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}

	// First-appearance order, and members keep listing order.
	if got := len(groups[0].actions); got != 2 {
		t.Errorf("group[0] size = %d, want 2", got)
	}
	if groups[0].actions[0].MessageID != "a" || groups[0].actions[1].MessageID != "c" {
		t.Errorf("group[0] = %v, want [a c]", memberIDs(groups[0]))
	}
	if groups[1].actions[0].MessageID != "b" {
		t.Errorf("group[1] = %v, want [b]", memberIDs(groups[1]))
	}
	if groups[2].actions[0].MessageID != "d" {
		t.Errorf("group[2] = %v, want [d]", memberIDs(groups[2]))
	}
}

func TestGroupActionsLabelOrderInsensitive(t *testing.T) {
	groups := groupActions([]*domain.Action{
		{MessageID: "a", AddLabels: []string{"X", "Y"}},
		{MessageID: "b", AddLabels: []string{"Y", "X"}},
	})
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1 (add-label order must not matter)", len(groups))
	}
}

func TestChunkActions(t *testing.T) {
	var actions []*domain.Action
	for i := 0; i < 7; i++ {
		actions = append(actions, &domain.Action{MessageID: fmt.Sprintf("m%d", i)})
	}

	tests := []struct {
		size      int
		wantSizes []int
	}{
		{3, []int{3, 3, 1}},
		{7, []int{7}},
		{100, []int{7}},
		{1, []int{1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		chunks := chunkActions(actions, tt.size)
		if len(chunks) != len(tt.wantSizes) {
			t.Errorf("size %d: chunks = %d, want %d", tt.size, len(chunks), len(tt.wantSizes))
			continue
		}
		for i, want := range tt.wantSizes {
			if len(chunks[i]) != want {
				t.Errorf("size %d: chunk[%d] = %d items, want %d", tt.size, i, len(chunks[i]), want)
			}
		}
	}

	if got := chunkActions(nil, 3); len(got) != 0 {
		t.Errorf("chunkActions(nil) = %v, want empty", got)
	}
}

func TestChunkIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	chunks := chunkIDs(ids, 2)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if chunks[2][0] != "e" {
		t.Errorf("last chunk = %v, want [e]", chunks[2])
	}
}

func memberIDs(g mutationGroup) []string {
	out := make([]string, len(g.actions))
	for i, a := range g.actions {
		out[i] = a.MessageID
	}
	return out
}
