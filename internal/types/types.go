// Package types defines core data structures for the groomer hygiene engine.
package types

import "time"

// User identifies a tracker account.
// Name is the login used in mention markup ([~name]); DisplayName is the
// human-readable form shown in reports.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// Comment is one comment on an issue. Comments are kept in insertion order,
// which for Jira matches chronological order.
type Comment struct {
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}

// IssueSnapshot is an immutable view of one tracked issue at fetch time.
// It is constructed once per fetch cycle and never mutated afterward.
type IssueSnapshot struct {
	Key              string    `json:"key"`
	Summary          string    `json:"summary,omitempty"`
	Status           string    `json:"status"`
	Assignee         *User     `json:"assignee,omitempty"`
	Comments         []Comment `json:"comments,omitempty"`
	AffectedVersions []string  `json:"affected_versions,omitempty"`
	Created          time.Time `json:"created,omitempty"`
	Updated          time.Time `json:"updated,omitempty"`
}

// LatestComment returns the most recent comment, or nil if there are none.
func (s *IssueSnapshot) LatestComment() *Comment {
	if len(s.Comments) == 0 {
		return nil
	}
	latest := &s.Comments[0]
	for i := 1; i < len(s.Comments); i++ {
		if s.Comments[i].Created.After(latest.Created) {
			latest = &s.Comments[i]
		}
	}
	return latest
}

// StaleReason explains why an issue was classified stale.
type StaleReason string

const (
	ReasonNoComments StaleReason = "no_comments"
	ReasonCommentAge StaleReason = "comment_age_exceeds_threshold"
)

// StalenessVerdict is the classifier's decision for one issue. A nil verdict
// means the issue was skipped (unassigned, excluded status, or filtered out
// by version); a non-nil verdict with IsStale=false means the issue was
// eligible but has recent activity.
type StalenessVerdict struct {
	IssueKey string      `json:"issue_key"`
	IsStale  bool        `json:"is_stale"`
	Reason   StaleReason `json:"reason,omitempty"`

	// LastCommentAt is the timestamp of the newest comment, zero when the
	// issue has no comments.
	LastCommentAt time.Time `json:"last_comment_at,omitempty"`
	AgeDays       int       `json:"age_days"`
}

// StaleIssue is the caller-facing summary returned by FindStaleIssues.
type StaleIssue struct {
	Key           string      `json:"key"`
	Summary       string      `json:"summary,omitempty"`
	Status        string      `json:"status"`
	Assignee      string      `json:"assignee,omitempty"`
	Reason        StaleReason `json:"reason"`
	LastCommentAt *time.Time  `json:"last_comment_at,omitempty"`
	AgeDays       int         `json:"age_days"`
	CommentCount  int         `json:"comment_count"`
}

// CommentPlanItem is one planned comment. Immutable once built; consumed
// exactly once by the execution engine.
type CommentPlanItem struct {
	IssueKey string `json:"issue_key"`
	Assignee string `json:"assignee,omitempty"`
	Body     string `json:"body"`
}

// ExecutionMode selects between preview and apply behavior.
type ExecutionMode string

const (
	ModeDryRun ExecutionMode = "dry_run"
	ModeLive   ExecutionMode = "live"
)

// Valid reports whether m is a recognized execution mode.
func (m ExecutionMode) Valid() bool {
	return m == ModeDryRun || m == ModeLive
}

// TargetScope selects which issues a comment run applies to.
type TargetScope string

const (
	ScopeAllStale       TargetScope = "all_stale"
	ScopeSpecificIssues TargetScope = "specific_issues"
)

// FailedItem records a single comment post that failed during a live run.
type FailedItem struct {
	IssueKey string `json:"issue_key"`
	Error    string `json:"error"`
}

// ExecutionResult is the outcome of one engine run. In dry-run mode only
// Previewed is populated; in live mode Succeeded and Failed accumulate in
// plan order.
type ExecutionResult struct {
	Mode          ExecutionMode     `json:"mode"`
	TotalTargeted int               `json:"total_targeted"`
	Succeeded     []string          `json:"succeeded,omitempty"`
	Failed        []FailedItem      `json:"failed,omitempty"`
	Previewed     []CommentPlanItem `json:"previewed,omitempty"`

	// SkippedKeys lists requested issue keys that were not present in the
	// fetched snapshot set (specific_issues scope only). Diagnostic, not
	// an error.
	SkippedKeys []string `json:"skipped_keys,omitempty"`
}
