package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trackerops/groomer/internal/config"
	"github.com/trackerops/groomer/internal/debug"
	"github.com/trackerops/groomer/internal/jira"
	"github.com/trackerops/groomer/internal/stale"
	"github.com/trackerops/groomer/internal/telemetry"
)

var (
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	cfg *config.Config

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "groom",
	Short: "groom - Jira hygiene toolkit",
	Long: `Keep Jira projects tidy: find stale issues and nudge their assignees.

groom talks to one Jira instance, configured via environment variables
(JIRA_URL, JIRA_TOKEN, optionally JIRA_USERNAME for Cloud) or
~/.groomer/config.yaml. All write operations default to a dry run; nothing
is posted until you pass --live.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		if err := telemetry.Init(rootCtx, "groomer", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}

		cfg = config.Load()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)

		if rootCancel != nil {
			rootCancel()
		}
	},
}

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "hygiene", Title: "Hygiene:"},
		&cobra.Group{ID: "issues", Title: "Working With Issues:"},
		&cobra.Group{ID: "server", Title: "Server:"},
	)
}

// mustClient validates configuration and builds the Jira client. Missing
// credentials abort before any network call.
func mustClient() *jira.Client {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return jira.NewClient(cfg.URL, cfg.Username, cfg.Token)
}

// mustRunner builds the hygiene pipeline runner over the configured client.
func mustRunner() *stale.Runner {
	client := mustClient()
	return stale.NewRunner(&jira.SnapshotSource{Client: client}, client)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
