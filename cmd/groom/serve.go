package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trackerops/groomer/internal/debug"
	"github.com/trackerops/groomer/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "server",
	Short:   "Run the MCP stdio server",
	Long: `Run groom as an MCP (Model Context Protocol) server over stdio.

The server exposes Jira tools to an AI assistant: search, get, create, and
update issues, plus stale-issue detection and batch assignee follow-ups.
Register it in your assistant's MCP configuration as:

  { "command": "groom", "args": ["serve"] }

Diagnostics go to stderr; stdout carries only the MCP protocol.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !debug.IsQuiet() {
		fmt.Fprintf(os.Stderr, "groom %s: MCP server starting (Jira: %s)\n", Version, cfg.URL)
	}

	s := tools.NewServer(cfg, Version)
	if err := tools.Serve(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server terminated: %v\n", err)
		os.Exit(1)
	}
}
