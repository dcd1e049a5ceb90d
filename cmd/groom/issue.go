package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trackerops/groomer/internal/jira"
	"github.com/trackerops/groomer/internal/ui"
)

var issueCmd = &cobra.Command{
	Use:     "issue",
	GroupID: "issues",
	Short:   "Work with individual Jira issues",
	Long: `Read and write individual Jira issues.

Examples:
  groom issue show PROJ-123
  groom issue search "project = PROJ AND status = Open"
  groom issue create --project PROJ --type Bug --summary "Crash on startup"
  groom issue comment PROJ-123 "Looking into this now"
  groom issue transition PROJ-123 "In Progress"`,
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-key>",
	Short: "Show a single issue with its comments",
	Long:  "Show a single issue. Accepts an issue key (PROJ-123) or a browse URL.",
	Args:  cobra.ExactArgs(1),
	Run:   runIssueShow,
}

var issueSearchCmd = &cobra.Command{
	Use:   "search <jql>",
	Short: "Search issues with a JQL query",
	Args:  cobra.ExactArgs(1),
	Run:   runIssueSearch,
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new issue",
	Run:   runIssueCreate,
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <issue-key> <body>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(2),
	Run:   runIssueComment,
}

var issueTransitionCmd = &cobra.Command{
	Use:   "transition <issue-key> [status]",
	Short: "Move an issue to a new status (no status: list transitions)",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runIssueTransition,
}

func init() {
	issueShowCmd.Flags().Bool("comments", false, "Include the full comment history")

	issueSearchCmd.Flags().Int("max-results", 0, "Maximum issues to return (default 50)")

	issueCreateCmd.Flags().String("project", "", "Project key (default: configured project)")
	issueCreateCmd.Flags().String("type", "Task", "Issue type (Bug, Task, Story, ...)")
	issueCreateCmd.Flags().String("summary", "", "Issue summary (required)")
	issueCreateCmd.Flags().String("description", "", "Issue description")
	issueCreateCmd.Flags().String("priority", "", "Priority name")
	issueCreateCmd.Flags().String("assignee", "", "Assignee username")
	_ = issueCreateCmd.MarkFlagRequired("summary")

	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueSearchCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueCommentCmd)
	issueCmd.AddCommand(issueTransitionCmd)
	rootCmd.AddCommand(issueCmd)
}

func runIssueShow(cmd *cobra.Command, args []string) {
	withComments, _ := cmd.Flags().GetBool("comments")
	client := mustClient()

	issue, err := client.GetIssue(rootCtx, issueKeyArg(args[0]))
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(issue)
		return
	}

	printIssue(client, issue)
	if withComments && issue.Fields.Comment != nil {
		fmt.Println()
		fmt.Println(ui.RenderHeader(fmt.Sprintf("Comments (%d):", issue.Fields.Comment.Total)))
		for _, c := range issue.Fields.Comment.Comments {
			author := "unknown"
			if c.Author != nil {
				author = userLabel(c.Author)
			}
			fmt.Printf("\n%s\n%s\n", ui.RenderMuted(fmt.Sprintf("%s · %s", author, c.Created)), c.Body)
		}
	}
}

func runIssueSearch(cmd *cobra.Command, args []string) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	client := mustClient()

	issues, err := client.SearchIssues(rootCtx, args[0], jira.SearchOptions{MaxResults: maxResults})
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(issues)
		return
	}

	if len(issues) == 0 {
		fmt.Println("No issues found")
		return
	}
	for _, issue := range issues {
		status := ""
		if issue.Fields.Status != nil {
			status = issue.Fields.Status.Name
		}
		fmt.Printf("%s  %-14s %s\n", ui.RenderKey(issue.Key), ui.RenderMuted(status), issue.Fields.Summary)
	}
}

func runIssueCreate(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	issueType, _ := cmd.Flags().GetString("type")
	summary, _ := cmd.Flags().GetString("summary")
	description, _ := cmd.Flags().GetString("description")
	priority, _ := cmd.Flags().GetString("priority")
	assignee, _ := cmd.Flags().GetString("assignee")

	if project == "" {
		project = cfg.Project
	}
	if project == "" {
		fatalf("no project specified: use --project or set GROOMER_PROJECT")
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"key": project},
		"summary":   summary,
		"issuetype": map[string]string{"name": issueType},
	}
	if description != "" {
		fields["description"] = description
	}
	if priority != "" {
		fields["priority"] = map[string]string{"name": priority}
	}
	if assignee != "" {
		fields["assignee"] = map[string]string{"name": assignee}
	}

	client := mustClient()
	issue, err := client.CreateIssue(rootCtx, fields)
	if err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(issue)
		return
	}
	fmt.Printf("%s Created %s\n", ui.RenderPass("✓"), ui.RenderKey(issue.Key))
	fmt.Printf("  %s\n", ui.RenderMuted(client.BrowseURL(issue.Key)))
}

func runIssueComment(cmd *cobra.Command, args []string) {
	client := mustClient()
	key := issueKeyArg(args[0])

	if err := client.AddComment(rootCtx, key, args[1]); err != nil {
		fatalf("%v", err)
	}

	if jsonOutput {
		outputJSON(map[string]string{"issue": key, "status": "commented"})
		return
	}
	fmt.Printf("%s Comment added to %s\n", ui.RenderPass("✓"), ui.RenderKey(key))
}

func runIssueTransition(cmd *cobra.Command, args []string) {
	client := mustClient()
	key := issueKeyArg(args[0])

	if len(args) == 1 {
		transitions, err := client.Transitions(rootCtx, key)
		if err != nil {
			fatalf("%v", err)
		}
		if jsonOutput {
			outputJSON(transitions)
			return
		}
		fmt.Printf("Available transitions for %s:\n", ui.RenderKey(key))
		for _, t := range transitions {
			fmt.Printf("  %s\n", t.Name)
		}
		return
	}

	if err := client.TransitionIssue(rootCtx, key, args[1]); err != nil {
		fatalf("%v", err)
	}
	if jsonOutput {
		outputJSON(map[string]string{"issue": key, "status": args[1]})
		return
	}
	fmt.Printf("%s %s → %s\n", ui.RenderPass("✓"), ui.RenderKey(key), args[1])
}

// printIssue renders the header block of a single issue.
func printIssue(client *jira.Client, issue *jira.Issue) {
	fmt.Printf("%s  %s\n", ui.RenderKey(issue.Key), issue.Fields.Summary)

	var meta []string
	if issue.Fields.Status != nil {
		meta = append(meta, issue.Fields.Status.Name)
	}
	if issue.Fields.IssueType != nil {
		meta = append(meta, issue.Fields.IssueType.Name)
	}
	if issue.Fields.Priority != nil {
		meta = append(meta, issue.Fields.Priority.Name)
	}
	if len(meta) > 0 {
		fmt.Printf("  %s\n", ui.RenderMuted(strings.Join(meta, " · ")))
	}

	if issue.Fields.Assignee != nil {
		fmt.Printf("  Assignee: %s\n", userLabel(issue.Fields.Assignee))
	} else {
		fmt.Printf("  Assignee: %s\n", ui.RenderMuted("unassigned"))
	}
	if len(issue.Fields.Versions) > 0 {
		names := make([]string, 0, len(issue.Fields.Versions))
		for _, v := range issue.Fields.Versions {
			names = append(names, v.Name)
		}
		fmt.Printf("  Affects: %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("  %s\n", ui.RenderMuted(client.BrowseURL(issue.Key)))
}

// issueKeyArg accepts either a bare issue key or a browse URL and returns
// the key.
func issueKeyArg(arg string) string {
	if key := jira.ExtractKey(arg); key != "" {
		return key
	}
	return arg
}

func userLabel(u *jira.UserField) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Name != "" {
		return u.Name
	}
	return u.AccountID
}
