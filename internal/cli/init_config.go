package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const exampleConfig = `server:
  port: 8080

provider:
  name: memory
  store_id: inbox
  # Query whose result set is not shrunk by this tool's own mutations;
  # only runs over it reuse a stored page cursor.
  stable_query: "label:Uncategorized"

triage:
  query: "label:Uncategorized"
  resume_mode: auto        # auto, never, always
  page_size: 100
  fetch_chunk_size: 20
  mutate_chunk_size: 1000
  throttle: 1s
  enable_escalation: true
  remove_source_label: ""
  retry:
    max_attempts: 5
    initial_delay: 1s
    max_delay: 60s
    backoff_multiple: 2.0

state:
  backend: file            # file, memory, postgres
  dir: ${HOME}/.mailtriage

# redis:
#   url: ${REDIS_URL}

# database:
#   url: ${DATABASE_URL}
#   max_conns: 10
#   min_conns: 2

logging:
  level: info              # debug, info, warn, error
  format: text             # text, json

vips:
  # - key: boss
  #   sender_pattern: 'boss@corp\.com'
  #   tier: 1
  #   star: true
  #   note: direct reports

custom_rules:
  # - name: Work/Internal
  #   patterns: ["@corp\\.com"]
  #   priority: 5
  #   tier: 2
  #   time_sensitive: true
`

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write an annotated example config file",
	Args:  cobra.MaximumNArgs(1),
	Run:   runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) {
	path := "config.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initConfigForce {
		fmt.Printf("%s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		fmt.Printf("Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
