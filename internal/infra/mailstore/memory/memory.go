// Package memory implements the backing-store port over mutex-guarded
// maps. It backs tests and dry runs; its fault injection knobs simulate
// rate limiting and partial failures.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
)

// Provider is an in-memory backing store.
type Provider struct {
	mu       sync.Mutex
	messages map[string]*domain.Message
	order    []string // listing order, fixed at insertion
	labels   map[string]struct{}

	// FailNext, when non-nil, is consumed by the next fallible call.
	FailNext error
	// FailApplyTimes makes that many ApplyBatch calls fail with
	// FailApplyWith before succeeding.
	FailApplyTimes int
	FailApplyWith  error

	applyCalls int
	listCalls  int
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{
		messages: make(map[string]*domain.Message),
		labels:   make(map[string]struct{}),
	}
}

// AddMessage seeds a message. Listing order is insertion order.
func (p *Provider) AddMessage(msg domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Labels == nil {
		msg.Labels = map[string]struct{}{"INBOX": {}}
	}
	cp := msg
	p.messages[msg.ID] = &cp
	p.order = append(p.order, msg.ID)
}

// Message returns a copy of a stored message.
func (p *Provider) Message(id string) (domain.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.messages[id]
	if !ok {
		return domain.Message{}, false
	}
	return *m, true
}

// ApplyCalls returns how many ApplyBatch calls were attempted.
func (p *Provider) ApplyCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyCalls
}

// ListCalls returns how many List calls were made.
func (p *Provider) ListCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listCalls
}

func (p *Provider) Name() string { return "memory" }

func (p *Provider) Capabilities() mailstore.Capability {
	return mailstore.CapTrueLabels | mailstore.CapStar |
		mailstore.CapArchive | mailstore.CapBatch | mailstore.CapSearch
}

// List pages through messages in insertion order. The cursor is the
// stringified offset, opaque to callers and convenient for tests. The
// query filters by "label:<name>" or matches everything when empty.
func (p *Provider) List(ctx context.Context, query string, limit int, cursor string) (*mailstore.ListResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listCalls++

	if err := p.takeFailure(); err != nil {
		return nil, err
	}

	matching := p.matchingLocked(query)

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, mailstore.NewError(mailstore.KindPermanent, "list",
				fmt.Errorf("bad cursor %q", cursor))
		}
		offset = n
	}
	if offset > len(matching) {
		offset = len(matching)
	}

	end := offset + limit
	if limit <= 0 || end > len(matching) {
		end = len(matching)
	}

	res := &mailstore.ListResult{TotalEstimate: len(matching)}
	for _, id := range matching[offset:end] {
		res.Messages = append(res.Messages, domain.Message{ID: id})
	}
	if end < len(matching) {
		res.NextCursor = strconv.Itoa(end)
	}
	return res, nil
}

func (p *Provider) matchingLocked(query string) []string {
	var want string
	if strings.HasPrefix(query, "label:") {
		want = strings.TrimPrefix(query, "label:")
	}

	out := make([]string, 0, len(p.order))
	for _, id := range p.order {
		msg, ok := p.messages[id]
		if !ok {
			continue
		}
		if want != "" {
			if _, has := msg.Labels[want]; !has {
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

func (p *Provider) GetDetails(ctx context.Context, id string) (*domain.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.takeFailure(); err != nil {
		return nil, err
	}

	msg, ok := p.messages[id]
	if !ok {
		return nil, mailstore.NewError(mailstore.KindNotFound, "get_details",
			fmt.Errorf("message %s", id))
	}
	cp := *msg
	return &cp, nil
}

func (p *Provider) BatchGetDetails(ctx context.Context, ids []string) (map[string]*domain.Message, error) {
	return mailstore.GetSequential(ctx, p, ids)
}

func (p *Provider) Apply(ctx context.Context, action *domain.Action) error {
	return p.ApplyBatch(ctx, []*domain.Action{action})
}

func (p *Provider) ApplyBatch(ctx context.Context, actions []*domain.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyCalls++

	if p.FailApplyTimes > 0 {
		p.FailApplyTimes--
		err := p.FailApplyWith
		if err == nil {
			err = mailstore.NewError(mailstore.KindRateLimited, "apply_batch",
				errors.New("simulated throttle"))
		}
		return err
	}
	if err := p.takeFailure(); err != nil {
		return err
	}

	for _, a := range actions {
		msg, ok := p.messages[a.MessageID]
		if !ok {
			return mailstore.NewError(mailstore.KindPermanent, "apply_batch",
				fmt.Errorf("message %s", a.MessageID))
		}
		for _, l := range a.AddLabels {
			msg.Labels[l] = struct{}{}
		}
		for _, l := range a.RemoveLabels {
			delete(msg.Labels, l)
		}
		if a.Archive {
			delete(msg.Labels, "INBOX")
		}
		if a.Star {
			msg.IsStarred = true
			msg.Labels["STARRED"] = struct{}{}
		}
	}
	return nil
}

func (p *Provider) EnsureCategoryExists(ctx context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels[name] = struct{}{}
	return name, nil
}

// Categories returns all provisioned label names, sorted.
func (p *Provider) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.labels))
	for name := range p.labels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *Provider) takeFailure() error {
	if p.FailNext != nil {
		err := p.FailNext
		p.FailNext = nil
		return err
	}
	return nil
}
