package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/state"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/pipeline"
)

var (
	escalateQuery  string
	escalateDryRun bool
	escalateLimit  int
)

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Sweep unanswered messages and raise their tier by age",
	Long: `Escalate re-examines messages matching the query and promotes stale
ones to a higher tier: time-sensitive mail after 24 hours, anything
after 72 hours. Escalation never lowers a tier.`,
	Run: runEscalate,
}

func init() {
	escalateCmd.Flags().StringVar(&escalateQuery, "query", "", "override the configured query")
	escalateCmd.Flags().BoolVar(&escalateDryRun, "dry-run", false, "report without mutating the mailbox")
	escalateCmd.Flags().IntVar(&escalateLimit, "limit", 0, "stop after this many messages (0 = unlimited)")
	rootCmd.AddCommand(escalateCmd)
}

func runEscalate(cmd *cobra.Command, args []string) {
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
	runCfg.EnableEscalation = true
	runCfg.DryRun = escalateDryRun
	if escalateQuery != "" {
		runCfg.Query = escalateQuery
	}
	if escalateLimit > 0 {
		runCfg.Limit = escalateLimit
	}
	// An escalation sweep re-reads mail this run may already have
	// touched, so never trust a stored cursor. It also checkpoints into
	// its own state record: the triage run's cursor must survive a
	// sweep untouched.
	runCfg.ResumeMode = state.ResumeNever
	runCfg.StoreID = cfg.Provider.StoreID + "-escalate"

	orch := pipeline.New(app.provider, app.engine, app.stateManager(ctx, runCfg.StoreID), app.dead, runCfg)

	cancelOnSignal(cancel)

	result, runErr := orch.Run(ctx)
	printSummary(result)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("Escalation sweep failed", "error", runErr)
		os.Exit(1)
	}
}
