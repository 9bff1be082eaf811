// Package pipeline drives the end-to-end triage loop: page through
// messages, fetch details, run the decision engine, group identical
// mutations, apply them through the backing-store port, and checkpoint
// progress so an interrupted run can resume.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/state"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/triage"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
	redisinfra "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/pipeline/metrics"
)

// Config holds per-run orchestrator settings.
type Config struct {
	// Query selects the messages to triage (provider syntax).
	Query string
	// StableQuery is the provider's query whose result set is stable
	// under this run's own mutations; only it is cursor-resumable under
	// ResumeAuto.
	StableQuery string
	// ResumeMode decides cursor reuse (see state.ResumeMode).
	ResumeMode state.ResumeMode
	// PageSize bounds one listing page.
	PageSize int
	// FetchChunkSize bounds one detail-fetch sub-batch.
	FetchChunkSize int
	// MutateChunkSize bounds one mutation call.
	MutateChunkSize int
	// Limit stops the run after this many processed messages; 0 = none.
	Limit int
	// Throttle is the sleep between pages, applied after checkpointing.
	Throttle time.Duration
	// DryRun computes and counts decisions without submitting mutations.
	DryRun bool
	// VIPOnly skips messages whose sender matches no VIP override.
	VIPOnly bool
	// EnableEscalation applies age-based tier escalation during triage.
	EnableEscalation bool
	// RemoveSourceLabel, when set, is stripped from reassigned messages
	// unless it equals the new label.
	RemoveSourceLabel string
	// StoreID keys the state record and the dead-letter queue.
	StoreID string
	// Retry controls the backoff policy for provider calls.
	Retry RetryConfig
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.PageSize <= 0 {
		out.PageSize = 100
	}
	if out.FetchChunkSize <= 0 {
		out.FetchChunkSize = 20
	}
	if out.MutateChunkSize <= 0 {
		out.MutateChunkSize = 1000
	}
	if out.ResumeMode == "" {
		out.ResumeMode = state.ResumeAuto
	}
	if out.Retry.MaxAttempts == 0 {
		out.Retry = DefaultRetryConfig
	}
	if out.StoreID == "" {
		out.StoreID = "default"
	}
	return out
}

// Orchestrator runs the triage state machine. Single-threaded by design:
// pages are processed strictly in listing order, one at a time.
type Orchestrator struct {
	provider   mailstore.Provider
	engine     *triage.Engine
	state      *state.Manager
	deadLetter redisinfra.DeadLetter
	cfg        Config

	sleep sleeper
	now   func() time.Time
}

// New builds an orchestrator. deadLetter may be nil; failed chunks are
// then only recorded in the run result.
func New(provider mailstore.Provider, engine *triage.Engine, st *state.Manager, deadLetter redisinfra.DeadLetter, cfg Config) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		engine:     engine,
		state:      st,
		deadLetter: deadLetter,
		cfg:        cfg.withDefaults(),
		sleep:      realSleep,
		now:        time.Now,
	}
}

// Run executes the loop until exhaustion, limit, cancellation, or a
// fatal error. Partial progress is always checkpointed; the returned
// result is valid even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context) (*domain.ProcessingResult, error) {
	result := domain.NewProcessingResult(uuid.NewString())
	caps := o.provider.Capabilities()

	cursor := o.state.ResumeCursor(o.cfg.ResumeMode, o.cfg.Query, o.cfg.StableQuery)
	cursorEligible := o.cfg.ResumeMode == state.ResumeAlways ||
		(o.cfg.ResumeMode == state.ResumeAuto && o.cfg.Query == o.cfg.StableQuery)

	total := o.state.Total()
	history := o.state.History()
	if history == nil {
		history = make(map[string]int)
	}

	slog.Info("Starting triage run",
		"run_id", result.RunID,
		"provider", o.provider.Name(),
		"query", o.cfg.Query,
		"resuming", cursor != "",
		"dry_run", o.cfg.DryRun)

	if !o.cfg.DryRun {
		o.ensureCategories(ctx)
	}

	processedThisRun := 0
	failedMutations := 0
	start := o.now()

	// Keep the summary consistent on every exit path, fatal ones
	// included.
	defer func() {
		result.SuccessCount = result.ProcessedCount - failedMutations
	}()

	for {
		if err := ctx.Err(); err != nil {
			o.checkpoint(ctx, cursor, total, history)
			return result, err
		}
		if o.cfg.Limit > 0 && processedThisRun >= o.cfg.Limit {
			slog.Info("Processed-count limit reached", "limit", o.cfg.Limit)
			break
		}

		pageLimit := o.cfg.PageSize
		if o.cfg.Limit > 0 && o.cfg.Limit-processedThisRun < pageLimit {
			pageLimit = o.cfg.Limit - processedThisRun
		}

		// LIST
		page, err := o.list(ctx, pageLimit, cursor)
		if err != nil {
			o.checkpoint(ctx, cursor, total, history)
			return result, fmt.Errorf("list failed: %w", err)
		}
		if len(page.Messages) == 0 {
			slog.Info("No more messages matching query")
			if cursorEligible {
				o.checkpoint(ctx, "", total, history)
			}
			break
		}

		ids := make([]string, len(page.Messages))
		for i, m := range page.Messages {
			ids[i] = m.ID
		}

		// FETCH_DETAILS
		details := o.fetchDetails(ctx, ids, result)

		// CLASSIFY + build actions
		actions := o.classify(ids, details, caps, result, history)

		// GROUP + MUTATE
		failed, err := o.mutate(ctx, actions, result)
		failedMutations += failed
		if err != nil {
			o.checkpoint(ctx, cursor, total, history)
			return result, err
		}

		processedThisRun += len(actions)
		result.ProcessedCount += len(actions)
		total += len(actions)
		cursor = page.NextCursor

		// CHECKPOINT before throttling: an interruption during the sleep
		// loses at most this page.
		o.checkpoint(ctx, cursor, total, history)
		metrics.PagesProcessed.WithLabelValues(o.provider.Name()).Inc()

		elapsed := o.now().Sub(start).Seconds()
		rate := 0.0
		if elapsed > 0 {
			rate = float64(processedThisRun) / elapsed
		}
		slog.Info("Page processed",
			"count", len(actions),
			"total_this_run", processedThisRun,
			"rate_per_sec", fmt.Sprintf("%.1f", rate))

		if cursor == "" {
			break
		}
		if o.cfg.Throttle > 0 {
			if err := o.sleep(ctx, o.cfg.Throttle); err != nil {
				o.checkpoint(ctx, cursor, total, history)
				return result, err
			}
		}
	}

	return result, nil
}

func (o *Orchestrator) list(ctx context.Context, limit int, cursor string) (*mailstore.ListResult, error) {
	var page *mailstore.ListResult
	err := callWithRetry(ctx, o.cfg.Retry, o.sleep, o.onRetry, func() error {
		metrics.ProviderCalls.WithLabelValues(o.provider.Name(), "list").Inc()
		var err error
		page, err = o.provider.List(ctx, o.cfg.Query, limit, cursor)
		if err != nil {
			o.countError("list", err)
		}
		return err
	})
	return page, err
}

// fetchDetails retrieves message headers in bounded sub-batches. A
// failed sub-batch falls back to per-item fetches with retry, so one bad
// message never sinks its neighbors.
func (o *Orchestrator) fetchDetails(ctx context.Context, ids []string, result *domain.ProcessingResult) map[string]*domain.Message {
	out := make(map[string]*domain.Message, len(ids))

	for _, chunk := range chunkIDs(ids, o.cfg.FetchChunkSize) {
		metrics.ProviderCalls.WithLabelValues(o.provider.Name(), "batch_get").Inc()
		batch, err := o.provider.BatchGetDetails(ctx, chunk)
		if err == nil {
			for id, msg := range batch {
				out[id] = msg
			}
			continue
		}
		o.countError("batch_get", err)
		slog.Warn("Batch fetch failed, retrying items individually",
			"size", len(chunk), "error", err)

		for _, id := range chunk {
			if _, done := out[id]; done {
				continue
			}
			var msg *domain.Message
			itemErr := callWithRetry(ctx, o.cfg.Retry, o.sleep, o.onRetry, func() error {
				metrics.ProviderCalls.WithLabelValues(o.provider.Name(), "get").Inc()
				var err error
				msg, err = o.provider.GetDetails(ctx, id)
				return err
			})
			if itemErr != nil {
				if mailstore.KindOf(itemErr) != mailstore.KindNotFound {
					o.countError("get", itemErr)
					result.RecordError(fmt.Sprintf("fetch %s: %v", id, itemErr))
				}
				continue
			}
			out[id] = msg
		}
	}
	return out
}

// classify runs the decision engine per message and converts each
// categorization into an action, honoring capability flags.
func (o *Orchestrator) classify(ids []string, details map[string]*domain.Message, caps mailstore.Capability, result *domain.ProcessingResult, history map[string]int) []*domain.Action {
	now := o.now()
	var actions []*domain.Action

	for _, id := range ids {
		msg, ok := details[id]
		if !ok || msg == nil {
			continue
		}
		if o.cfg.VIPOnly && !o.engine.VIPs().IsVIP(msg.Sender) {
			continue
		}

		cat := o.engine.Categorize(msg.Sender, msg.Subject)
		tier := cat.Tier

		if o.cfg.EnableEscalation {
			esc := triage.Escalate(tier, msg.AgeHours(now), cat.TimeSensitive)
			if esc.ShouldEscalate {
				tier = esc.EscalatedTier
				metrics.EscalationsApplied.WithLabelValues(o.provider.Name()).Inc()
				slog.Debug("Escalated by age",
					"id", id, "from", esc.OriginalTier, "to", esc.EscalatedTier,
					"reason", esc.Reason)
			}
		}

		history[cat.Label]++
		result.AddLabelStat(cat.Label)
		metrics.MessagesProcessed.WithLabelValues(o.provider.Name(), cat.Label).Inc()

		actions = append(actions, o.buildAction(msg, cat, tier, caps))
	}
	return actions
}

func (o *Orchestrator) buildAction(msg *domain.Message, cat domain.CategorizationResult, tier int, caps mailstore.Capability) *domain.Action {
	tierCfg := domain.TierFor(tier)
	a := &domain.Action{
		MessageID: msg.ID,
		AddLabels: []string{cat.Label},
	}

	if tierCfg.Star && caps.Has(mailstore.CapStar) {
		a.Star = true
	}
	if !tierCfg.KeepInInbox && caps.Has(mailstore.CapArchive) {
		a.Archive = true
	}
	if tierCfg.Folder != "" && caps.Has(mailstore.CapFolders) {
		a.TargetFolder = tierCfg.Folder
	}

	if msg.HasLabel("Uncategorized") && cat.Label != "Uncategorized" {
		a.RemoveLabels = append(a.RemoveLabels, "Uncategorized")
	}
	if o.cfg.RemoveSourceLabel != "" && cat.Label != o.cfg.RemoveSourceLabel {
		a.RemoveLabels = append(a.RemoveLabels, o.cfg.RemoveSourceLabel)
	}
	return a
}

// mutate groups actions by identical mutation, chunks each group, and
// submits the chunks. Rate-limit exhaustion is fatal; other failures
// fail every message in the chunk and the run continues. Returns how
// many messages failed.
func (o *Orchestrator) mutate(ctx context.Context, actions []*domain.Action, result *domain.ProcessingResult) (int, error) {
	if o.cfg.DryRun || len(actions) == 0 {
		return 0, nil
	}

	failed := 0
	for _, group := range groupActions(actions) {
		for _, chunk := range chunkActions(group.actions, o.cfg.MutateChunkSize) {
			start := o.now()
			err := callWithRetry(ctx, o.cfg.Retry, o.sleep, o.onRetry, func() error {
				metrics.ProviderCalls.WithLabelValues(o.provider.Name(), "apply_batch").Inc()
				return o.provider.ApplyBatch(ctx, chunk)
			})
			metrics.MutateLatency.WithLabelValues(o.provider.Name()).
				Observe(o.now().Sub(start).Seconds())

			if err == nil {
				continue
			}
			o.countError("apply_batch", err)

			if mailstore.Retryable(err) || ctx.Err() != nil {
				// Backoff ceiling hit (or cancelled): abort the run.
				return failed, fmt.Errorf("mutation chunk failed after retries: %w", err)
			}

			failed += len(chunk)
			result.RecordError(fmt.Sprintf("mutation chunk of %d: %v", len(chunk), err))
			result.ErrorCount += len(chunk) - 1
			o.recordDeadLetter(ctx, chunk, err)
			slog.Error("Mutation chunk failed, continuing",
				"size", len(chunk), "error", err)
		}
	}
	return failed, nil
}

func (o *Orchestrator) recordDeadLetter(ctx context.Context, chunk []*domain.Action, cause error) {
	if o.deadLetter == nil || len(chunk) == 0 {
		return
	}

	sample := chunk[0]
	fc := redisinfra.FailedChunk{
		StoreID:      o.cfg.StoreID,
		AddLabels:    sample.AddLabels,
		RemoveLabels: sample.RemoveLabels,
		Archive:      sample.Archive,
		Star:         sample.Star,
		Error:        cause.Error(),
		FailedAt:     o.now().UTC(),
	}
	for _, a := range chunk {
		fc.MessageIDs = append(fc.MessageIDs, a.MessageID)
	}
	if err := o.deadLetter.Push(ctx, fc); err != nil {
		slog.Error("Failed to record dead-letter chunk", "error", err)
	}
}

func (o *Orchestrator) ensureCategories(ctx context.Context) {
	for _, label := range o.engine.Classifier().Taxonomy().Labels() {
		if _, err := o.provider.EnsureCategoryExists(ctx, label); err != nil {
			slog.Warn("Failed to provision category", "label", label, "error", err)
		}
	}
}

func (o *Orchestrator) checkpoint(ctx context.Context, cursor string, total int, history map[string]int) {
	// Checkpoint writes must survive a cancelled run context.
	saveCtx := ctx
	if saveCtx.Err() != nil {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	o.state.Save(saveCtx, cursor, o.cfg.Query, total, history)
	metrics.LastCheckpoint.WithLabelValues(o.provider.Name()).SetToCurrentTime()
}

func (o *Orchestrator) onRetry(attempt int) {
	metrics.MutateRetries.WithLabelValues(o.provider.Name()).Inc()
	slog.Warn("Provider call rate limited, backing off", "attempt", attempt)
}

func (o *Orchestrator) countError(op string, err error) {
	metrics.ProviderErrors.WithLabelValues(
		o.provider.Name(), op, mailstore.KindOf(err).String()).Inc()
}
