package pipeline

import (
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

// mutationGroup collects the messages that require an identical mutation
// so they can be submitted to the backing store together.
type mutationGroup struct {
	key     string
	actions []*domain.Action
}

// groupActions buckets actions by their canonical mutation key. Group
// order follows first appearance so submission order is deterministic.
func groupActions(actions []*domain.Action) []mutationGroup {
	index := make(map[string]int)
	var groups []mutationGroup

	for _, a := range actions {
		k := a.GroupKey()
		if i, ok := index[k]; ok {
			groups[i].actions = append(groups[i].actions, a)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, mutationGroup{key: k, actions: []*domain.Action{a}})
	}
	return groups
}

// chunkActions splits a group's actions into slices of at most size.
func chunkActions(actions []*domain.Action, size int) [][]*domain.Action {
	if size <= 0 {
		size = len(actions)
	}
	var chunks [][]*domain.Action
	for start := 0; start < len(actions); start += size {
		end := start + size
		if end > len(actions) {
			end = len(actions)
		}
		chunks = append(chunks, actions[start:end])
	}
	return chunks
}

// chunkIDs splits a list of message IDs into slices of at most size,
// preserving order.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
