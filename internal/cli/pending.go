package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	redisinfra "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the dead-letter backlog for this store",
	Run:   runPending,
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}

func runPending(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if cfg.Redis.URL == "" {
		fmt.Println("Dead-letter queue is in-memory; nothing persists between runs.")
		return
	}

	client, err := redisinfra.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	count, err := client.Count(context.Background(), cfg.Provider.StoreID)
	if err != nil {
		slog.Error("Failed to read dead-letter queue", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Store:          %s\n", cfg.Provider.StoreID)
	fmt.Printf("Pending chunks: %d\n", count)
}
