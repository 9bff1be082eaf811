package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/config"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/state"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/pipeline"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/pipeline/health"
)

var (
	runDryRun      bool
	runVIPOnly     bool
	runLimit       int
	runQuery       string
	runResume      string
	runNoEscalate  bool
	runServeHealth bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Triage messages matching the configured query",
	Run:   runTriage,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute decisions without mutating the mailbox")
	runCmd.Flags().BoolVar(&runVIPOnly, "vip-only", false, "only process messages from VIP senders")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "stop after this many messages (0 = unlimited)")
	runCmd.Flags().StringVar(&runQuery, "query", "", "override the configured query")
	runCmd.Flags().StringVar(&runResume, "resume", "", "cursor resumption: auto, never, or always")
	runCmd.Flags().BoolVar(&runNoEscalate, "no-escalate", false, "disable age-based tier escalation")
	runCmd.Flags().BoolVar(&runServeHealth, "serve", false, "expose /health and /metrics while running")
	rootCmd.AddCommand(runCmd)
}

func runTriage(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	runCfg := orchestratorConfig(cfg)
	if runQuery != "" {
		runCfg.Query = runQuery
	}
	if runResume != "" {
		runCfg.ResumeMode = state.ResumeMode(runResume)
	}
	runCfg.DryRun = runDryRun
	runCfg.VIPOnly = runVIPOnly
	if runLimit > 0 {
		runCfg.Limit = runLimit
	}
	if runNoEscalate {
		runCfg.EnableEscalation = false
	}

	mgr := app.stateManager(ctx, cfg.Provider.StoreID)
	orch := pipeline.New(app.provider, app.engine, mgr, app.dead, runCfg)

	if runServeHealth {
		var pinger health.Pinger
		if app.db != nil {
			pinger = app.db
		}
		monitor := health.NewMonitor(mgr, app.dead, cfg.Provider.StoreID, pinger)
		server := health.NewServer(monitor, cfg.Server.Port)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("Health server stopped", "error", err)
			}
		}()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			_ = server.Stop(stopCtx)
		}()
	}

	cancelOnSignal(cancel)

	result, runErr := orch.Run(ctx)
	printSummary(result)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("Run failed", "error", runErr)
		os.Exit(1)
	}
}

func orchestratorConfig(cfg *config.AppConfig) pipeline.Config {
	return pipeline.Config{
		Query:             cfg.Triage.Query,
		StableQuery:       cfg.Provider.StableQuery,
		ResumeMode:        state.ResumeMode(cfg.Triage.ResumeMode),
		PageSize:          cfg.Triage.PageSize,
		FetchChunkSize:    cfg.Triage.FetchChunkSize,
		MutateChunkSize:   cfg.Triage.MutateChunkSize,
		Throttle:          cfg.Triage.Throttle,
		EnableEscalation:  cfg.Triage.EnableEscalation,
		RemoveSourceLabel: cfg.Triage.RemoveSourceLabel,
		StoreID:           cfg.Provider.StoreID,
		Retry: pipeline.RetryConfig{
			MaxAttempts:     cfg.Triage.Retry.MaxAttempts,
			InitialDelay:    cfg.Triage.Retry.InitialDelay,
			MaxDelay:        cfg.Triage.Retry.MaxDelay,
			BackoffMultiple: cfg.Triage.Retry.BackoffMultiple,
		},
	}
}

func printSummary(result *domain.ProcessingResult) {
	if result == nil {
		return
	}
	slog.Info("Run complete",
		"run_id", result.RunID,
		"processed", result.ProcessedCount,
		"succeeded", result.SuccessCount,
		"failed", result.ErrorCount)

	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(result.LabelCounts))
	for label, count := range result.LabelCounts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})
	for _, e := range entries {
		slog.Info("Category", "label", e.label, "count", e.count)
	}

	for _, e := range result.Errors {
		slog.Warn("Recorded failure", "detail", e)
	}
}
