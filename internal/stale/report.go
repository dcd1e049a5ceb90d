package stale

import (
	"fmt"
	"strings"

	"github.com/trackerops/groomer/internal/types"
)

// Report is the aggregated, caller-facing summary of one execution. Purely a
// formatting and counting step over an ExecutionResult.
type Report struct {
	Mode          types.ExecutionMode     `json:"mode"`
	TotalTargeted int                     `json:"total_targeted"`
	SucceededN    int                     `json:"succeeded"`
	FailedN       int                     `json:"failed"`
	Succeeded     []string                `json:"succeeded_keys,omitempty"`
	Failures      []types.FailedItem      `json:"failures,omitempty"`
	Previews      []types.CommentPlanItem `json:"previews,omitempty"`
	SkippedKeys   []string                `json:"skipped_keys,omitempty"`
}

// Summarize aggregates per-action outcomes into a single report.
func Summarize(result *types.ExecutionResult) *Report {
	return &Report{
		Mode:          result.Mode,
		TotalTargeted: result.TotalTargeted,
		SucceededN:    len(result.Succeeded),
		FailedN:       len(result.Failed),
		Succeeded:     result.Succeeded,
		Failures:      result.Failed,
		Previews:      result.Previewed,
		SkippedKeys:   result.SkippedKeys,
	}
}

// Text renders the report for terminal or tool output.
func (r *Report) Text() string {
	var b strings.Builder

	if r.Mode == types.ModeDryRun {
		fmt.Fprintf(&b, "Dry run: %d issue(s) targeted, no comments posted\n", r.TotalTargeted)
		for _, item := range r.Previews {
			fmt.Fprintf(&b, "\n%s (assignee: %s)\n  %s\n", item.IssueKey, orUnassigned(item.Assignee), item.Body)
		}
		if r.TotalTargeted > 0 {
			b.WriteString("\nRe-run in live mode to post these comments\n")
		}
	} else {
		fmt.Fprintf(&b, "Posted %d/%d comment(s)", r.SucceededN, r.TotalTargeted)
		if r.FailedN > 0 {
			fmt.Fprintf(&b, ", %d failed", r.FailedN)
		}
		b.WriteString("\n")
		for _, key := range r.Succeeded {
			fmt.Fprintf(&b, "  ✓ %s\n", key)
		}
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  ✗ %s: %s\n", f.IssueKey, f.Error)
		}
	}

	if len(r.SkippedKeys) > 0 {
		fmt.Fprintf(&b, "\nSkipped (not found in project): %s\n", strings.Join(r.SkippedKeys, ", "))
	}

	return b.String()
}

func orUnassigned(name string) string {
	if name == "" {
		return "unassigned"
	}
	return name
}
