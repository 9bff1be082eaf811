package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear checkpoint state so the next run starts from scratch",
	Run:   runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) {
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

	if err := repo.Clear(ctx, cfg.Provider.StoreID); err != nil {
		slog.Error("Failed to clear state", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Cleared state for store %q\n", cfg.Provider.StoreID)
}
