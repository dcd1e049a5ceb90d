package stale

import (
	"strings"
	"testing"

	"github.com/trackerops/groomer/internal/types"
)

func TestSummarizeDryRun(t *testing.T) {
	result := &types.ExecutionResult{
		Mode:          types.ModeDryRun,
		TotalTargeted: 2,
		Previewed:     testPlan("PROJ-1", "PROJ-2"),
	}

	report := Summarize(result)
	if report.Mode != types.ModeDryRun || report.TotalTargeted != 2 {
		t.Errorf("report header wrong: %+v", report)
	}
	if report.SucceededN != 0 || report.FailedN != 0 {
		t.Errorf("dry-run counts should be zero: %+v", report)
	}

	text := report.Text()
	if !strings.Contains(text, "Dry run: 2 issue(s) targeted") {
		t.Errorf("missing dry-run header in:\n%s", text)
	}
	if !strings.Contains(text, "[~alice] Do you have any update on this issue?") {
		t.Errorf("preview should include rendered bodies:\n%s", text)
	}
	if !strings.Contains(text, "live mode") {
		t.Errorf("dry-run text should point at live mode:\n%s", text)
	}
}

func TestSummarizeLiveWithFailures(t *testing.T) {
	result := &types.ExecutionResult{
		Mode:          types.ModeLive,
		TotalTargeted: 3,
		Succeeded:     []string{"PROJ-1", "PROJ-3"},
		Failed:        []types.FailedItem{{IssueKey: "PROJ-2", Error: "403 forbidden"}},
	}

	report := Summarize(result)
	if report.SucceededN != 2 || report.FailedN != 1 {
		t.Errorf("counts wrong: %+v", report)
	}

	text := report.Text()
	if !strings.Contains(text, "Posted 2/3 comment(s), 1 failed") {
		t.Errorf("missing summary line in:\n%s", text)
	}
	if !strings.Contains(text, "✗ PROJ-2: 403 forbidden") {
		t.Errorf("missing failure line in:\n%s", text)
	}
	if !strings.Contains(text, "✓ PROJ-1") {
		t.Errorf("missing success line in:\n%s", text)
	}
}

func TestSummarizeSkippedKeys(t *testing.T) {
	result := &types.ExecutionResult{
		Mode:        types.ModeDryRun,
		SkippedKeys: []string{"X-1", "X-2"},
	}

	text := Summarize(result).Text()
	if !strings.Contains(text, "Skipped (not found in project): X-1, X-2") {
		t.Errorf("missing skipped line in:\n%s", text)
	}
}
