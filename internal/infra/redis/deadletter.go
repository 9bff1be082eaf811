package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FailedChunk records one mutation chunk that exhausted its options:
// the message IDs, the mutation they all required, and why it failed.
type FailedChunk struct {
	StoreID      string    `json:"store_id"`
	MessageIDs   []string  `json:"message_ids"`
	AddLabels    []string  `json:"add_labels"`
	RemoveLabels []string  `json:"remove_labels"`
	Archive      bool      `json:"archive"`
	Star         bool      `json:"star"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}

// DeadLetter collects failed mutation chunks.
type DeadLetter interface {
	Push(ctx context.Context, chunk FailedChunk) error
	Pop(ctx context.Context, storeID string) (*FailedChunk, bool, error)
	Count(ctx context.Context, storeID string) (int64, error)
}

func queueKey(storeID string) string {
	return fmt.Sprintf("triage_dead_letter:%s", storeID)
}

// Push appends a chunk to the store's queue.
func (c *Client) Push(ctx context.Context, chunk FailedChunk) error {
	if chunk.FailedAt.IsZero() {
		chunk.FailedAt = time.Now().UTC()
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to encode dead-letter chunk: %w", err)
	}
	if err := c.rdb.RPush(ctx, queueKey(chunk.StoreID), data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// Pop removes and returns the oldest chunk, if any.
func (c *Client) Pop(ctx context.Context, storeID string) (*FailedChunk, bool, error) {
	data, err := c.rdb.LPop(ctx, queueKey(storeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lpop failed: %w", err)
	}

	var chunk FailedChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, false, fmt.Errorf("failed to decode dead-letter chunk: %w", err)
	}
	return &chunk, true, nil
}

// Count returns the queue depth for a store.
func (c *Client) Count(ctx context.Context, storeID string) (int64, error) {
	n, err := c.rdb.LLen(ctx, queueKey(storeID)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

// MemoryDeadLetter is the in-process fallback used when Redis is not
// configured.
type MemoryDeadLetter struct {
	mu     sync.Mutex
	queues map[string][]FailedChunk
}

// NewMemoryDeadLetter returns an empty in-memory dead-letter queue.
func NewMemoryDeadLetter() *MemoryDeadLetter {
	return &MemoryDeadLetter{queues: make(map[string][]FailedChunk)}
}

func (m *MemoryDeadLetter) Push(ctx context.Context, chunk FailedChunk) error {
	if chunk.FailedAt.IsZero() {
		chunk.FailedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[chunk.StoreID] = append(m.queues[chunk.StoreID], chunk)
	return nil
}

func (m *MemoryDeadLetter) Pop(ctx context.Context, storeID string) (*FailedChunk, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queues[storeID]
	if len(q) == 0 {
		return nil, false, nil
	}
	chunk := q[0]
	m.queues[storeID] = q[1:]
	return &chunk, true, nil
}

func (m *MemoryDeadLetter) Count(ctx context.Context, storeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.queues[storeID])), nil
}
