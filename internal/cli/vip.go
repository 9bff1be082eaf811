package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var vipCmd = &cobra.Command{
	Use:   "vip",
	Short: "List configured VIP sender overrides",
	Run:   runVIP,
}

func init() {
	rootCmd.AddCommand(vipCmd)
}

func runVIP(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(cfg.VIPs) == 0 {
		fmt.Println("No VIP overrides configured.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "KEY\tPATTERN\tTIER\tSTAR\tLABEL\tNOTE")
	for _, v := range cfg.VIPs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%s\t%s\n",
			v.Key, v.SenderPattern, v.Tier, v.Star, v.LabelOverride, v.Note)
	}
	_ = w.Flush()
}
