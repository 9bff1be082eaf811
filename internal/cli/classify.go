package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/triage"
)

var classifyAge time.Duration

var classifyCmd = &cobra.Command{
	Use:   "classify [sender] [subject]",
	Short: "Show the triage decision for a single message",
	Args:  cobra.ExactArgs(2),
	Run:   runClassify,
}

func init() {
	classifyCmd.Flags().DurationVar(&classifyAge, "age", 0, "message age, for escalation preview (e.g. 30h)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	engine, err := newEngine(cfg)
	if err != nil {
		slog.Error("Failed to build decision engine", "error", err)
		os.Exit(1)
	}

	sender, subject := args[0], args[1]
	result := engine.Categorize(sender, subject)

	fmt.Printf("Label: %s\n", result.Label)
	fmt.Printf("Tier:  %d (%s)\n", result.Tier, domain.TierFor(result.Tier).Name)
	fmt.Printf("Time-sensitive: %v\n", result.TimeSensitive)
	if result.IsVIP {
		fmt.Printf("VIP: yes")
		if result.VIPNote != "" {
			fmt.Printf(" (%s)", result.VIPNote)
		}
		fmt.Println()
	}

	if classifyAge > 0 {
		esc := triage.Escalate(result.Tier, classifyAge.Hours(), result.TimeSensitive)
		if esc.ShouldEscalate {
			fmt.Printf("Escalation at %s: tier %d -> %d (%s)\n",
				classifyAge, esc.OriginalTier, esc.EscalatedTier, esc.Reason)
		} else {
			fmt.Printf("Escalation at %s: none\n", classifyAge)
		}
	}
}
