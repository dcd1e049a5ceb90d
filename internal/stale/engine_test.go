package stale

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/trackerops/groomer/internal/types"
)

// fakeSink records AddComment calls and fails for keys in failOn.
type fakeSink struct {
	calls  []string
	bodies map[string]string
	failOn map[string]bool
}

func newFakeSink(failOn ...string) *fakeSink {
	s := &fakeSink{
		bodies: make(map[string]string),
		failOn: make(map[string]bool),
	}
	for _, key := range failOn {
		s.failOn[key] = true
	}
	return s
}

func (s *fakeSink) AddComment(ctx context.Context, issueKey, body string) error {
	s.calls = append(s.calls, issueKey)
	if s.failOn[issueKey] {
		return fmt.Errorf("simulated post failure for %s", issueKey)
	}
	s.bodies[issueKey] = body
	return nil
}

func testPlan(keys ...string) []types.CommentPlanItem {
	plan := make([]types.CommentPlanItem, 0, len(keys))
	for _, key := range keys {
		plan = append(plan, types.CommentPlanItem{
			IssueKey: key,
			Assignee: "alice",
			Body:     "[~alice] Do you have any update on this issue?",
		})
	}
	return plan
}

func TestExecuteDryRunNeverWrites(t *testing.T) {
	sink := newFakeSink()
	plan := testPlan("PROJ-1", "PROJ-2")

	result := Execute(context.Background(), plan, types.ModeDryRun, sink)

	if len(sink.calls) != 0 {
		t.Errorf("dry run called the sink: %v", sink.calls)
	}
	if result.Mode != types.ModeDryRun {
		t.Errorf("mode = %q, want dry_run", result.Mode)
	}
	if result.TotalTargeted != 2 {
		t.Errorf("TotalTargeted = %d, want 2", result.TotalTargeted)
	}
	if !reflect.DeepEqual(result.Previewed, plan) {
		t.Errorf("Previewed = %+v, want the full plan", result.Previewed)
	}
	if len(result.Succeeded) != 0 || len(result.Failed) != 0 {
		t.Error("dry run should record neither successes nor failures")
	}
}

func TestExecuteUnknownModeCoercesToDryRun(t *testing.T) {
	sink := newFakeSink()
	result := Execute(context.Background(), testPlan("PROJ-1"), types.ExecutionMode("apply"), sink)

	if len(sink.calls) != 0 {
		t.Errorf("unrecognized mode must not write, sink saw %v", sink.calls)
	}
	if result.Mode != types.ModeDryRun {
		t.Errorf("mode = %q, want dry_run", result.Mode)
	}
}

func TestExecuteLive(t *testing.T) {
	sink := newFakeSink()
	plan := testPlan("PROJ-1", "PROJ-2", "PROJ-3")

	result := Execute(context.Background(), plan, types.ModeLive, sink)

	if !reflect.DeepEqual(sink.calls, []string{"PROJ-1", "PROJ-2", "PROJ-3"}) {
		t.Errorf("sink calls = %v, want plan order", sink.calls)
	}
	if !reflect.DeepEqual(result.Succeeded, []string{"PROJ-1", "PROJ-2", "PROJ-3"}) {
		t.Errorf("Succeeded = %v", result.Succeeded)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want none", result.Failed)
	}
	if len(result.Previewed) != 0 {
		t.Error("live run should not produce previews")
	}
	if sink.bodies["PROJ-2"] != plan[1].Body {
		t.Errorf("posted body = %q, want rendered plan body", sink.bodies["PROJ-2"])
	}
}

func TestExecuteLivePartialFailure(t *testing.T) {
	sink := newFakeSink("PROJ-2")
	plan := testPlan("PROJ-1", "PROJ-2", "PROJ-3")

	result := Execute(context.Background(), plan, types.ModeLive, sink)

	// Failure on the middle item must not stop the batch.
	if len(sink.calls) != 3 {
		t.Fatalf("sink saw %d calls, want 3 (failure must not abort)", len(sink.calls))
	}
	if !reflect.DeepEqual(result.Succeeded, []string{"PROJ-1", "PROJ-3"}) {
		t.Errorf("Succeeded = %v, want [PROJ-1 PROJ-3]", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].IssueKey != "PROJ-2" {
		t.Fatalf("Failed = %+v, want one entry for PROJ-2", result.Failed)
	}
	if result.Failed[0].Error == "" {
		t.Error("failure entry should carry the error message")
	}
	if result.TotalTargeted != 3 {
		t.Errorf("TotalTargeted = %d, want 3", result.TotalTargeted)
	}
}

func TestExecuteAtMostOncePerIssue(t *testing.T) {
	sink := newFakeSink("PROJ-1")
	Execute(context.Background(), testPlan("PROJ-1"), types.ModeLive, sink)

	// No retry at the engine level; transport retries live in the sink.
	if len(sink.calls) != 1 {
		t.Errorf("sink saw %d calls for one failing item, want exactly 1", len(sink.calls))
	}
}

func TestExecuteEmptyPlan(t *testing.T) {
	sink := newFakeSink()
	result := Execute(context.Background(), nil, types.ModeLive, sink)

	if result.TotalTargeted != 0 {
		t.Errorf("TotalTargeted = %d, want 0", result.TotalTargeted)
	}
	if len(sink.calls) != 0 {
		t.Errorf("sink saw calls for an empty plan: %v", sink.calls)
	}
}
