package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackerops/groomer/internal/debug"
	"github.com/trackerops/groomer/internal/stale"
	"github.com/trackerops/groomer/internal/types"
	"github.com/trackerops/groomer/internal/ui"
)

var staleCmd = &cobra.Command{
	Use:     "stale",
	GroupID: "hygiene",
	Short:   "Find and follow up on stale issues",
	Long: `Detect stale issues and nudge their assignees.

An issue is stale when it is assigned, not in a terminal status, and its
latest comment is older than the threshold (or it has no comments at all).

Examples:
  groom stale list --project OCPBUGS
  groom stale list --project OCPBUGS --days 7 --affects-version 4.18
  groom stale comment --project OCPBUGS              # dry run, shows the plan
  groom stale comment --project OCPBUGS --live       # actually posts
  groom stale comment --issues OCPBUGS-1,OCPBUGS-2 --live`,
}

var staleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stale issues in a project",
	Run:   runStaleList,
}

var staleCommentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Post follow-up comments to stale issues' assignees",
	Long: `Build a comment plan over stale issues and execute it.

Without --live this is a dry run: the full plan is printed, comment bodies
included, and nothing is posted. With --live each planned comment is posted
in order; a failure on one issue is recorded and the batch continues.`,
	Run: runStaleComment,
}

func init() {
	staleListCmd.Flags().String("project", "", "Project key to scan (default: configured project)")
	staleListCmd.Flags().Int("days", stale.DefaultDaysThreshold, "Staleness threshold in days")
	staleListCmd.Flags().Bool("with-comments-only", false, "Skip issues that have no comments at all")
	staleListCmd.Flags().StringSlice("status", nil, "Narrow to these statuses (after terminal-status exclusion)")
	staleListCmd.Flags().StringSlice("affects-version", nil, "Only issues affecting these versions (X.Y also matches X.Y.z)")
	staleListCmd.Flags().StringSlice("exclude-status", nil, "Replace the default excluded statuses")
	staleListCmd.Flags().Int("max-results", 0, "Maximum issues to examine (default 50)")

	staleCommentCmd.Flags().Bool("live", false, "Actually post comments (default: dry run)")
	staleCommentCmd.Flags().String("project", "", "Project key to scan (default: configured project)")
	staleCommentCmd.Flags().Int("days", stale.DefaultDaysThreshold, "Staleness threshold in days")
	staleCommentCmd.Flags().String("template", "", "Comment template; {assignee} becomes a [~username] mention")
	staleCommentCmd.Flags().StringSlice("issues", nil, "Target these issue keys instead of all stale issues")
	staleCommentCmd.Flags().StringSlice("affects-version", nil, "Only issues affecting these versions")
	staleCommentCmd.Flags().StringSlice("exclude-status", nil, "Replace the default excluded statuses")

	staleCmd.AddCommand(staleListCmd)
	staleCmd.AddCommand(staleCommentCmd)
	rootCmd.AddCommand(staleCmd)
}

func runStaleList(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	days := resolveDays(cmd)
	withCommentsOnly, _ := cmd.Flags().GetBool("with-comments-only")
	statusFilter, _ := cmd.Flags().GetStringSlice("status")
	versions, _ := cmd.Flags().GetStringSlice("affects-version")
	excludes, _ := cmd.Flags().GetStringSlice("exclude-status")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	if project == "" {
		project = cfg.Project
	}
	if project == "" {
		fatalf("no project specified: use --project or set %s", "GROOMER_PROJECT")
	}
	if len(excludes) == 0 {
		excludes = cfg.ExcludeStatuses
	}

	runner := mustRunner()
	opts := stale.FindOptions{
		ProjectKey:        project,
		DaysThreshold:     days,
		IncludeNoComments: !withCommentsOnly,
		StatusFilter:      statusFilter,
		AffectsVersions:   versions,
		ExcludeStatuses:   excludes,
		MaxResults:        maxResults,
	}

	staleIssues, err := runner.FindStaleIssues(rootCtx, opts)
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(staleIssues)
		return
	}

	if len(staleIssues) == 0 {
		fmt.Printf("%s No stale issues in %s (threshold: %d days)\n", ui.RenderPass("✓"), project, days)
		return
	}

	fmt.Println(ui.RenderHeader(fmt.Sprintf("%d stale issue(s) in %s (threshold: %d days)", len(staleIssues), project, days)))
	fmt.Println()
	for _, issue := range staleIssues {
		fmt.Printf("%s  %s\n", ui.RenderKey(issue.Key), issue.Summary)
		last := "no comments"
		if issue.Reason == types.ReasonCommentAge && issue.LastCommentAt != nil {
			last = fmt.Sprintf("last comment %s (%d days ago)", issue.LastCommentAt.Format("2006-01-02"), issue.AgeDays)
		}
		fmt.Printf("    %s\n", ui.RenderMuted(fmt.Sprintf("%s · %s · %s", issue.Status, issue.Assignee, last)))
	}
}

func runStaleComment(cmd *cobra.Command, args []string) {
	live, _ := cmd.Flags().GetBool("live")
	project, _ := cmd.Flags().GetString("project")
	days := resolveDays(cmd)
	template, _ := cmd.Flags().GetString("template")
	issues, _ := cmd.Flags().GetStringSlice("issues")
	versions, _ := cmd.Flags().GetStringSlice("affects-version")
	excludes, _ := cmd.Flags().GetStringSlice("exclude-status")

	opts := stale.CommentOptions{
		Mode:            types.ModeDryRun,
		Scope:           types.ScopeAllStale,
		DaysThreshold:   days,
		Template:        template,
		AffectsVersions: versions,
	}
	if live {
		opts.Mode = types.ModeLive
	}
	if len(issues) > 0 {
		opts.Scope = types.ScopeSpecificIssues
		opts.SpecificIssues = issues
	}
	if len(excludes) > 0 {
		opts.ExcludeStatuses = excludes
	} else if len(cfg.ExcludeStatuses) > 0 {
		opts.ExcludeStatuses = cfg.ExcludeStatuses
	}

	if project == "" && opts.Scope == types.ScopeAllStale {
		project = cfg.Project
	}
	opts.ProjectKey = project

	if opts.Scope == types.ScopeAllStale && project == "" {
		fatalf("no project specified: use --project or set GROOMER_PROJECT")
	}

	runner := mustRunner()
	report, err := runner.CommentOnStaleIssues(rootCtx, opts)
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(report)
		return
	}

	text := report.Text()
	if report.Mode == types.ModeDryRun {
		fmt.Print(text)
		if report.TotalTargeted > 0 {
			debug.PrintNormal("\n%s\n", ui.RenderWarn("Dry run only; re-run with --live to post"))
		}
	} else {
		fmt.Print(colorizeResults(text))
	}
}

// resolveDays returns the --days flag value, with the configured
// days-threshold taking over as the default when the flag was not given.
func resolveDays(cmd *cobra.Command) int {
	days, _ := cmd.Flags().GetInt("days")
	if !cmd.Flags().Changed("days") && cfg != nil && cfg.DaysThreshold > 0 {
		return cfg.DaysThreshold
	}
	return days
}

// colorizeResults styles the ✓/✗ result lines of a live-run report.
func colorizeResults(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "✓") {
			lines[i] = "  " + ui.RenderPass(trimmed)
		} else if strings.HasPrefix(trimmed, "✗") {
			lines[i] = "  " + ui.RenderFail(trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
