package stale

import (
	"strings"

	"github.com/trackerops/groomer/internal/types"
)

// DefaultTemplate is the comment body used when the caller supplies none.
const DefaultTemplate = "{assignee} Do you have any update on this issue?"

// PlanOptions controls how a comment plan is built from a snapshot set.
type PlanOptions struct {
	Scope        types.TargetScope
	SpecificKeys []string
	Template     string
	Policy       Policy
}

// Plan turns a snapshot set into an ordered list of planned comments.
//
// For ScopeAllStale every snapshot is classified and only stale verdicts are
// planned. For ScopeSpecificIssues the plan covers exactly the requested keys
// that exist in targets, bypassing the classifier; unknown keys are returned
// in skipped rather than treated as an error.
//
// Plan order always matches the targets order. Previews and tests depend on
// that ordering being stable.
func Plan(targets []types.IssueSnapshot, opts PlanOptions) (items []types.CommentPlanItem, skipped []string) {
	template := opts.Template
	if template == "" {
		template = DefaultTemplate
	}

	switch opts.Scope {
	case types.ScopeSpecificIssues:
		requested := make(map[string]bool, len(opts.SpecificKeys))
		for _, key := range opts.SpecificKeys {
			requested[key] = true
		}
		for i := range targets {
			if requested[targets[i].Key] {
				items = append(items, buildItem(&targets[i], template))
				delete(requested, targets[i].Key)
			}
		}
		for _, key := range opts.SpecificKeys {
			if requested[key] {
				skipped = append(skipped, key)
			}
		}
	default: // ScopeAllStale
		for i := range targets {
			verdict := Classify(&targets[i], opts.Policy)
			if verdict != nil && verdict.IsStale {
				items = append(items, buildItem(&targets[i], template))
			}
		}
	}

	return items, skipped
}

func buildItem(issue *types.IssueSnapshot, template string) types.CommentPlanItem {
	assignee := ""
	if issue.Assignee != nil {
		assignee = issue.Assignee.Name
	}
	return types.CommentPlanItem{
		IssueKey: issue.Key,
		Assignee: assignee,
		Body:     RenderTemplate(template, assignee),
	}
}

// RenderTemplate substitutes the {assignee} placeholder with a tracker
// mention ([~name]) so the tracker's notification system fires. Any other
// placeholder is left verbatim. An empty assignee renders as an empty
// mention-free substitution.
func RenderTemplate(template, assignee string) string {
	mention := ""
	if assignee != "" {
		mention = Mention(assignee)
	}
	return strings.ReplaceAll(template, "{assignee}", mention)
}

// Mention formats a username as Jira mention markup.
func Mention(name string) string {
	return "[~" + name + "]"
}
