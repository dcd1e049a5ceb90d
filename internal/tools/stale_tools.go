package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/trackerops/groomer/internal/stale"
	"github.com/trackerops/groomer/internal/telemetry"
	"github.com/trackerops/groomer/internal/types"
)

// FindStaleTool classifies a project's issues and reports the stale set.
type FindStaleTool struct {
	Runner         *stale.Runner
	DefaultProject string
}

func (t *FindStaleTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_find_stale_issues",
		mcp.WithDescription("Find assigned issues with no comments or whose latest comment is older than a threshold. "+
			"Terminal statuses (Verified, ON_QA, Closed, Release Pending) are excluded before staleness is evaluated."),
		mcp.WithString("project_key", mcp.Description("Project to scan (default: configured project)")),
		mcp.WithNumber("days_threshold", mcp.Description("Staleness threshold in days (default 14)")),
		mcp.WithBoolean("include_no_comments", mcp.Description("Include issues with no comments at all (default true)")),
		mcp.WithArray("status_filter", mcp.Description("Narrow to these statuses (applied after exclusion)"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("affects_versions", mcp.Description("Only issues affecting these versions; X.Y also matches X.Y.z"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithNumber("max_results", mcp.Description("Maximum issues to examine (default 50)")),
	)
}

func (t *FindStaleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_find_stale_issues")

	opts := stale.FindOptions{
		ProjectKey:        req.GetString("project_key", t.DefaultProject),
		DaysThreshold:     req.GetInt("days_threshold", stale.DefaultDaysThreshold),
		IncludeNoComments: req.GetBool("include_no_comments", true),
		StatusFilter:      req.GetStringSlice("status_filter", nil),
		AffectsVersions:   req.GetStringSlice("affects_versions", nil),
		MaxResults:        req.GetInt("max_results", 0),
	}

	staleIssues, err := t.Runner.FindStaleIssues(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(FormatStaleIssues(staleIssues, opts)), nil
}

// CommentStaleTool builds and executes a batch comment plan over stale issues.
type CommentStaleTool struct {
	Runner         *stale.Runner
	DefaultProject string
}

func (t *CommentStaleTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_comment_on_stale_issues",
		mcp.WithDescription("Post follow-up comments to assignees of stale issues. "+
			"Defaults to dry_run, which returns the full plan without writing anything; "+
			"pass mode=live to post the comments. The {assignee} placeholder in the "+
			"template renders as a [~username] mention."),
		mcp.WithString("mode", mcp.Description("dry_run (preview, default) or live (post comments)")),
		mcp.WithString("target_scope", mcp.Description("all_stale (default) or specific_issues")),
		mcp.WithArray("specific_issues", mcp.Description("Issue keys to target when target_scope is specific_issues"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("project_key", mcp.Description("Project to scan; required for all_stale scope")),
		mcp.WithNumber("days_threshold", mcp.Description("Staleness threshold in days (default 14)")),
		mcp.WithString("comment_template", mcp.Description("Comment template; {assignee} becomes a mention")),
		mcp.WithArray("exclude_statuses", mcp.Description("Replace (not merge with) the default excluded statuses"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("affects_versions", mcp.Description("Only issues affecting these versions; X.Y also matches X.Y.z"),
			mcp.Items(map[string]any{"type": "string"})),
	)
}

func (t *CommentStaleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_comment_on_stale_issues")

	scope := types.TargetScope(req.GetString("target_scope", string(types.ScopeAllStale)))

	opts := stale.CommentOptions{
		Mode:            types.ExecutionMode(req.GetString("mode", string(types.ModeDryRun))),
		Scope:           scope,
		SpecificIssues:  req.GetStringSlice("specific_issues", nil),
		DaysThreshold:   req.GetInt("days_threshold", stale.DefaultDaysThreshold),
		Template:        req.GetString("comment_template", ""),
		AffectsVersions: req.GetStringSlice("affects_versions", nil),
	}

	// exclude_statuses replaces the default set only when explicitly given;
	// absent means "use the defaults", not "exclude nothing".
	if excludes := req.GetStringSlice("exclude_statuses", nil); len(excludes) > 0 {
		opts.ExcludeStatuses = excludes
	}

	// The configured default project only applies to all_stale scope;
	// specific keys name their own project.
	if scope == types.ScopeAllStale {
		opts.ProjectKey = req.GetString("project_key", t.DefaultProject)
	} else {
		opts.ProjectKey = req.GetString("project_key", "")
	}

	report, err := t.Runner.CommentOnStaleIssues(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(report.Text()), nil
}

// FormatStaleIssues renders a stale-issue list for tool or terminal output.
func FormatStaleIssues(issues []types.StaleIssue, opts stale.FindOptions) string {
	if len(issues) == 0 {
		return fmt.Sprintf("No stale issues found in %s. All assigned issues have activity within %d days.",
			opts.ProjectKey, effectiveThreshold(opts.DaysThreshold))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d stale issue(s) in %s (threshold: %d days):\n\n",
		len(issues), opts.ProjectKey, effectiveThreshold(opts.DaysThreshold))
	for _, issue := range issues {
		fmt.Fprintf(&b, "%s: %s\n", issue.Key, issue.Summary)
		fmt.Fprintf(&b, "  Status: %s  Assignee: %s  Comments: %d\n",
			issue.Status, issue.Assignee, issue.CommentCount)
		if issue.Reason == types.ReasonNoComments {
			b.WriteString("  Last activity: no comments\n")
		} else {
			fmt.Fprintf(&b, "  Last comment: %s (%d days ago)\n",
				issue.LastCommentAt.Format("2006-01-02"), issue.AgeDays)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func effectiveThreshold(days int) int {
	if days <= 0 {
		return stale.DefaultDaysThreshold
	}
	return days
}
