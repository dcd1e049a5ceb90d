// Package tools exposes groomer's operations as MCP tools. Each tool is a
// small struct holding its collaborators, with a Definition for registration
// and a Handle callback; the server package wires them together.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/trackerops/groomer/internal/jira"
	"github.com/trackerops/groomer/internal/stale"
	"github.com/trackerops/groomer/internal/telemetry"
	"github.com/trackerops/groomer/internal/types"
)

// SearchTool runs a raw JQL search. Pure passthrough: groomer defines no
// query language of its own.
type SearchTool struct {
	Client *jira.Client
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_search_issues",
		mcp.WithDescription("Search for Jira issues using JQL (Jira Query Language)."),
		mcp.WithString("jql", mcp.Required(), mcp.Description("JQL query string")),
		mcp.WithNumber("max_results", mcp.Description("Maximum number of results (default 50)")),
	)
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_search_issues")

	jql, err := req.RequireString("jql")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults := req.GetInt("max_results", jira.DefaultMaxResults)

	issues, err := t.Client.SearchIssues(ctx, jql, jira.SearchOptions{MaxResults: maxResults})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(issues) == 0 {
		return mcp.NewToolResultText("No issues found matching the JQL query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issue(s):\n\n", len(issues))
	for i := range issues {
		writeIssueSummary(&b, &issues[i])
	}
	return mcp.NewToolResultText(b.String()), nil
}

// GetTool fetches one issue with its recent comments.
type GetTool struct {
	Client *jira.Client
}

func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_get_issue",
		mcp.WithDescription("Get detailed information about a specific Jira issue, including recent comments."),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("Issue key, e.g. PROJ-123")),
	)
}

func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_get_issue")

	key, err := req.RequireString("issue_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	issue, err := t.Client.GetIssue(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get issue failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Issue: %s\n\n", issue.Key)
	fmt.Fprintf(&b, "Summary:  %s\n", issue.Fields.Summary)
	fmt.Fprintf(&b, "Status:   %s\n", fieldName(issue.Fields.Status))
	fmt.Fprintf(&b, "Assignee: %s\n", userName(issue.Fields.Assignee))
	fmt.Fprintf(&b, "Reporter: %s\n", userName(issue.Fields.Reporter))
	fmt.Fprintf(&b, "Priority: %s\n", priorityName(issue.Fields.Priority))
	fmt.Fprintf(&b, "Type:     %s\n", typeName(issue.Fields.IssueType))
	fmt.Fprintf(&b, "Created:  %s\n", issue.Fields.Created)
	fmt.Fprintf(&b, "Updated:  %s\n", issue.Fields.Updated)
	fmt.Fprintf(&b, "URL:      %s\n", t.Client.BrowseURL(issue.Key))

	if issue.Fields.Comment != nil && len(issue.Fields.Comment.Comments) > 0 {
		comments := issue.Fields.Comment.Comments
		// Show the last 5 comments only
		start := 0
		if len(comments) > 5 {
			start = len(comments) - 5
		}
		fmt.Fprintf(&b, "\nComments (%d total):\n", issue.Fields.Comment.Total)
		for _, c := range comments[start:] {
			author := "unknown"
			if c.Author != nil {
				author = c.Author.DisplayName
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", author, c.Created, c.Body)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// CreateTool creates a new issue.
type CreateTool struct {
	Client *jira.Client
}

func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_create_issue",
		mcp.WithDescription("Create a new Jira issue."),
		mcp.WithString("project_key", mcp.Required(), mcp.Description("Project key, e.g. PROJ")),
		mcp.WithString("issue_type", mcp.Required(), mcp.Description("Issue type name, e.g. Bug, Task")),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Issue summary")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Issue description")),
		mcp.WithString("priority", mcp.Description("Priority name (default Medium)")),
		mcp.WithString("assignee", mcp.Description("Assignee username")),
	)
}

func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_create_issue")

	projectKey, err := req.RequireString("project_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	issueType, err := req.RequireString("issue_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := req.RequireString("summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := map[string]interface{}{
		"project":     map[string]string{"key": projectKey},
		"summary":     summary,
		"description": description,
		"issuetype":   map[string]string{"name": issueType},
		"priority":    map[string]string{"name": req.GetString("priority", "Medium")},
	}
	if assignee := req.GetString("assignee", ""); assignee != "" {
		fields["assignee"] = map[string]string{"name": assignee}
	}

	created, err := t.Client.CreateIssue(ctx, fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create issue failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created %s: %s\nURL: %s",
		created.Key, created.Fields.Summary, t.Client.BrowseURL(created.Key))), nil
}

// UpdateTool updates issue fields and handles status transitions.
type UpdateTool struct {
	Client *jira.Client
}

func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_update_issue",
		mcp.WithDescription("Update an existing Jira issue. Status changes go through workflow transitions."),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("Issue key, e.g. PROJ-123")),
		mcp.WithString("summary", mcp.Description("New summary")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("Target status name (must be an available transition)")),
		mcp.WithString("assignee", mcp.Description("New assignee username")),
	)
}

func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_update_issue")

	key, err := req.RequireString("issue_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := make(map[string]interface{})
	if summary := req.GetString("summary", ""); summary != "" {
		fields["summary"] = summary
	}
	if description := req.GetString("description", ""); description != "" {
		fields["description"] = description
	}
	if assignee := req.GetString("assignee", ""); assignee != "" {
		fields["assignee"] = map[string]string{"name": assignee}
	}

	if len(fields) > 0 {
		if err := t.Client.UpdateIssue(ctx, key, fields); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}
	}

	// Status changes use the transition API, not a field update.
	if status := req.GetString("status", ""); status != "" {
		if err := t.Client.TransitionIssue(ctx, key, status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated %s", key)), nil
}

// AddCommentTool posts a single comment with optional assignee mentioning,
// behind the same dry_run/live gate as the batch engine.
type AddCommentTool struct {
	Client *jira.Client
}

func (t *AddCommentTool) Definition() mcp.Tool {
	return mcp.NewTool("jira_add_comment",
		mcp.WithDescription("Add a comment to a Jira issue with optional assignee mention. "+
			"Defaults to dry_run; pass mode=live to actually post."),
		mcp.WithString("issue_key", mcp.Required(), mcp.Description("Issue key, e.g. PROJ-123")),
		mcp.WithString("comment", mcp.Required(), mcp.Description("Comment text")),
		mcp.WithBoolean("mention_assignee", mcp.Description("Mention the current assignee (default true)")),
		mcp.WithString("custom_mention_user", mcp.Description("Mention this username instead of the assignee")),
		mcp.WithString("mode", mcp.Description("dry_run (preview, default) or live (post the comment)")),
	)
}

func (t *AddCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	telemetry.CountToolInvocation(ctx, "jira_add_comment")

	key, err := req.RequireString("issue_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	comment, err := req.RequireString("comment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode := types.ExecutionMode(req.GetString("mode", string(types.ModeDryRun)))
	if !mode.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid mode %q: use %q or %q",
			mode, types.ModeDryRun, types.ModeLive)), nil
	}
	mentionAssignee := req.GetBool("mention_assignee", true)
	customUser := req.GetString("custom_mention_user", "")

	issue, err := t.Client.GetIssue(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get issue failed: %v", err)), nil
	}
	snap := jira.ToSnapshot(issue)

	body := comment
	mentioned := ""
	switch {
	case customUser != "":
		body = stale.Mention(customUser) + " " + comment
		mentioned = customUser
	case mentionAssignee && snap.Assignee != nil:
		body = stale.Mention(snap.Assignee.Name) + " " + comment
		mentioned = snap.Assignee.DisplayName
	case mentionAssignee:
		body = comment + "\n\n_Note: This issue is currently unassigned._"
	}

	if mode == types.ModeDryRun {
		var b strings.Builder
		fmt.Fprintf(&b, "Comment preview for %s\n", key)
		fmt.Fprintf(&b, "Issue:    %s\n", snap.Summary)
		fmt.Fprintf(&b, "Assignee: %s\n", assigneeDisplay(&snap))
		if mentioned != "" {
			fmt.Fprintf(&b, "Will notify: %s\n", mentioned)
		}
		fmt.Fprintf(&b, "\nFinal comment text:\n%s\n", body)
		fmt.Fprintf(&b, "\nTo post this comment, use mode=live\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	if err := t.Client.AddComment(ctx, key, body); err != nil {
		telemetry.CountCommentFailed(ctx)
		return mcp.NewToolResultError(err.Error()), nil
	}
	telemetry.CountCommentPosted(ctx)

	result := fmt.Sprintf("Comment posted to %s\nURL: %s", key, t.Client.BrowseURL(key))
	if mentioned != "" {
		result += fmt.Sprintf("\nNotified: %s", mentioned)
	}
	return mcp.NewToolResultText(result), nil
}

func writeIssueSummary(b *strings.Builder, issue *jira.Issue) {
	fmt.Fprintf(b, "%s: %s\n", issue.Key, issue.Fields.Summary)
	fmt.Fprintf(b, "  Status: %s  Assignee: %s  Priority: %s\n\n",
		fieldName(issue.Fields.Status), userName(issue.Fields.Assignee), priorityName(issue.Fields.Priority))
}

func fieldName(s *jira.StatusField) string {
	if s == nil {
		return "Unknown"
	}
	return s.Name
}

func priorityName(p *jira.PriorityField) string {
	if p == nil {
		return "None"
	}
	return p.Name
}

func typeName(t *jira.IssueTypeField) string {
	if t == nil {
		return "Unknown"
	}
	return t.Name
}

func userName(u *jira.UserField) string {
	if u == nil {
		return "Unassigned"
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

func assigneeDisplay(snap *types.IssueSnapshot) string {
	if snap.Assignee == nil {
		return "Unassigned"
	}
	if snap.Assignee.DisplayName != "" {
		return snap.Assignee.DisplayName
	}
	return snap.Assignee.Name
}
