package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/config"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/state"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/triage"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore"
	mailmem "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/mailstore/memory"
	redisinfra "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
	filestore "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage/file"
	memstore "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage/memory"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage/postgres"
)

// app bundles the wired components behind a command.
type app struct {
	cfg      *config.AppConfig
	provider mailstore.Provider
	engine   *triage.Engine
	repo     storage.StateRepository
	dead     redisinfra.DeadLetter

	db    *postgres.DB
	redis *redisinfra.Client
}

func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	a := &app{cfg: cfg}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	a.provider = provider

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	a.engine = engine

	repo, db, err := newStateRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	a.db = db

	if cfg.Redis.URL != "" {
		client, err := redisinfra.NewClient(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		a.dead = client
	} else {
		a.dead = redisinfra.NewMemoryDeadLetter()
	}

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
}

// stateManager loads (or initializes) checkpoint state for one store.
// Commands that page over a different query than the triage run (the
// escalate sweep) pass their own store ID so records never mix.
func (a *app) stateManager(ctx context.Context, storeID string) *state.Manager {
	return state.NewManager(ctx, a.repo, storeID, a.provider.Name())
}

// cancelOnSignal cancels the run context on SIGINT/SIGTERM. The
// orchestrator checkpoints before returning, so an interrupted command
// still leaves resumable state behind.
func cancelOnSignal(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, finishing current page...", "signal", sig)
		cancel()
	}()
}

func newProvider(cfg *config.AppConfig) (mailstore.Provider, error) {
	switch cfg.Provider.Name {
	case "memory":
		return mailmem.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

func newEngine(cfg *config.AppConfig) (*triage.Engine, error) {
	rules := triage.MergeRules(triage.DefaultRules(), cfg.CustomRules)
	tax, err := triage.NewTaxonomy(rules)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}

	vips := triage.NewVIPRegistry()
	for _, v := range cfg.VIPs {
		if err := vips.Add(triage.VIPOverride{
			Key:           v.Key,
			SenderPattern: v.SenderPattern,
			Tier:          v.Tier,
			Star:          v.Star,
			LabelOverride: v.LabelOverride,
			Note:          v.Note,
		}); err != nil {
			return nil, fmt.Errorf("vip %q: %w", v.Key, err)
		}
	}
	return triage.NewEngine(tax, vips), nil
}

func newStateRepo(ctx context.Context, cfg *config.AppConfig) (storage.StateRepository, *postgres.DB, error) {
	switch cfg.State.Backend {
	case "file":
		repo, err := filestore.NewStore(cfg.State.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("state dir: %w", err)
		}
		return repo, nil, nil
	case "memory":
		return memstore.NewStore(), nil, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return postgres.NewStateRepo(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}
