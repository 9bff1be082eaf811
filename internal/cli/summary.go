package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/triage"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Report processed mail grouped by priority tier",
	Run:   runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()
	repo, db, err := newStateRepo(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open state store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			_ = db.Close()
		}()
	}

	rec, err := repo.Load(ctx, cfg.Provider.StoreID)
	if errors.Is(err, storage.ErrStateNotFound) {
		fmt.Printf("No state recorded for store %q\n", cfg.Provider.StoreID)
		return
	}
	if err != nil {
		slog.Error("Failed to load state", "error", err)
		os.Exit(1)
	}

	tax, err := triage.NewTaxonomy(triage.MergeRules(triage.DefaultRules(), cfg.CustomRules))
	if err != nil {
		slog.Error("Failed to build taxonomy", "error", err)
		os.Exit(1)
	}
	dist := tax.TierDistribution(rec.History)

	fmt.Printf("Store:           %s\n", cfg.Provider.StoreID)
	fmt.Printf("Total processed: %d\n", rec.TotalProcessed)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIER\tNAME\tCOUNT")
	for _, tc := range domain.Tiers() {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", tc.Number, tc.Name, dist[tc.Number])
	}
	_ = w.Flush()
}
