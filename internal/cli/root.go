// Package cli implements the mailtriage command tree.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "mailtriage",
	Short: "Mail triage service",
	Long:  `Mailtriage categorizes, prioritizes, and files mailbox messages in resumable batches.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads the config file, falling back to built-in defaults
// when the default path does not exist, and initializes logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	var cfg *config.AppConfig
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			initLogging(config.LoggingConfig{})
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	initLogging(cfg.Logging)
	return cfg
}

func initLogging(lc config.LoggingConfig) {
	level := slog.LevelInfo
	if isDebug || lc.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	}
	slog.SetDefault(slog.New(handler))
}
