package stale

import (
	"context"

	"github.com/trackerops/groomer/internal/telemetry"
	"github.com/trackerops/groomer/internal/types"
)

// CommentSink posts a single comment to an issue. Implemented by the Jira
// client; faked in tests.
type CommentSink interface {
	AddComment(ctx context.Context, issueKey, body string) error
}

// Execute runs a comment plan in the given mode.
//
// In dry-run mode the sink is never called: the full plan comes back as a
// preview with every rendered body visible. Dry-run is the default; nothing
// is ever written unless mode is explicitly ModeLive.
//
// In live mode the plan is applied in order, one sink call per item. A
// failure on one item is recorded and processing continues with the next;
// no single-issue failure aborts the batch. Each targeted issue is attempted
// at most once per invocation. Re-running the same plan posts duplicate
// comments; callers re-derive plans from fresh data each run.
func Execute(ctx context.Context, plan []types.CommentPlanItem, mode types.ExecutionMode, sink CommentSink) *types.ExecutionResult {
	if mode != types.ModeLive {
		mode = types.ModeDryRun
	}

	result := &types.ExecutionResult{
		Mode:          mode,
		TotalTargeted: len(plan),
	}

	if mode == types.ModeDryRun {
		result.Previewed = append(result.Previewed, plan...)
		return result
	}

	for _, item := range plan {
		if err := sink.AddComment(ctx, item.IssueKey, item.Body); err != nil {
			telemetry.CountCommentFailed(ctx)
			result.Failed = append(result.Failed, types.FailedItem{
				IssueKey: item.IssueKey,
				Error:    err.Error(),
			})
			continue
		}
		telemetry.CountCommentPosted(ctx)
		result.Succeeded = append(result.Succeeded, item.IssueKey)
	}

	return result
}
