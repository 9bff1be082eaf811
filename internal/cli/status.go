package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint state and category history",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	fmt.Printf("Store:           %s\n", cfg.Provider.StoreID)
	fmt.Printf("Total processed: %d\n", rec.TotalProcessed)
	fmt.Printf("Resumable:       %v\n", rec.Resumable())
	if !rec.LastRun.IsZero() {
		fmt.Printf("Last run:        %s\n", rec.LastRun.Format("2006-01-02 15:04:05 MST"))
	}

	if len(rec.History) == 0 {
		return
	}

	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(rec.History))
	for label, count := range rec.History {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CATEGORY\tCOUNT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", e.label, e.count)
	}
	_ = w.Flush()
}
