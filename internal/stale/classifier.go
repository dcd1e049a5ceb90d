// Package stale implements the staleness classification and batch comment
// pipeline: snapshot -> verdict -> plan -> execution result. Every stage is a
// pure function over immutable inputs so each is independently testable.
package stale

import (
	"strings"
	"time"

	"github.com/trackerops/groomer/internal/types"
)

// DefaultDaysThreshold is the staleness threshold applied when the caller
// does not supply one.
const DefaultDaysThreshold = 14

// DefaultExcludeStatuses are terminal or closed-equivalent statuses that are
// never commented on. A caller-supplied exclude set fully replaces this list,
// it is never merged with it.
var DefaultExcludeStatuses = []string{"Verified", "ON_QA", "Closed", "Release Pending"}

// Policy holds the classification parameters for one batch. Now is captured
// once per batch so every issue in a run shares the same reference time.
type Policy struct {
	Now             time.Time
	DaysThreshold   int
	ExcludeStatuses []string

	// RequiredVersions restricts eligibility to issues whose affected
	// versions intersect this set. Empty means no version filtering.
	RequiredVersions []string
}

// NewPolicy builds a Policy, filling in defaults for zero values.
// excludeStatuses == nil means "use the default set"; an empty non-nil slice
// means "exclude nothing" (explicit override).
// requiredVersions are expanded to their maintenance-stream variants.
func NewPolicy(now time.Time, daysThreshold int, excludeStatuses, requiredVersions []string) Policy {
	if daysThreshold <= 0 {
		daysThreshold = DefaultDaysThreshold
	}
	if excludeStatuses == nil {
		excludeStatuses = DefaultExcludeStatuses
	}
	return Policy{
		Now:              now,
		DaysThreshold:    daysThreshold,
		ExcludeStatuses:  excludeStatuses,
		RequiredVersions: ExpandVersions(requiredVersions),
	}
}

// ExpandVersions expands each version label to include its maintenance-stream
// variant: "4.18" becomes "4.18" and "4.18.z". Labels already carrying a .z
// suffix are kept as-is. Nil in, nil out.
func ExpandVersions(versions []string) []string {
	if len(versions) == 0 {
		return nil
	}
	expanded := make([]string, 0, len(versions)*2)
	for _, v := range versions {
		expanded = append(expanded, v)
		if !strings.HasSuffix(v, ".z") {
			expanded = append(expanded, v+".z")
		}
	}
	return expanded
}

// Classify evaluates one issue snapshot against the policy.
//
// Returns nil when the issue is skipped entirely: no assignee, status in the
// exclude set (case-insensitive, trimmed), or no overlap with the required
// versions. Otherwise returns a verdict: stale with reason "no_comments" when
// the issue has no comments at all, stale with reason
// "comment_age_exceeds_threshold" when the newest comment is at least
// DaysThreshold whole days old, and not-stale otherwise.
func Classify(issue *types.IssueSnapshot, policy Policy) *types.StalenessVerdict {
	if issue.Assignee == nil || issue.Assignee.Name == "" {
		return nil
	}
	if statusExcluded(issue.Status, policy.ExcludeStatuses) {
		return nil
	}
	if len(policy.RequiredVersions) > 0 && !versionsIntersect(issue.AffectedVersions, policy.RequiredVersions) {
		return nil
	}

	latest := issue.LatestComment()
	if latest == nil {
		return &types.StalenessVerdict{
			IssueKey: issue.Key,
			IsStale:  true,
			Reason:   types.ReasonNoComments,
		}
	}

	ageDays := wholeDays(policy.Now.Sub(latest.Created))
	verdict := &types.StalenessVerdict{
		IssueKey:      issue.Key,
		LastCommentAt: latest.Created,
		AgeDays:       ageDays,
	}
	if ageDays >= policy.DaysThreshold {
		verdict.IsStale = true
		verdict.Reason = types.ReasonCommentAge
	}
	return verdict
}

// statusExcluded reports whether status matches any entry in excludes,
// ignoring case and surrounding whitespace.
func statusExcluded(status string, excludes []string) bool {
	status = strings.TrimSpace(strings.ToLower(status))
	for _, ex := range excludes {
		if status == strings.TrimSpace(strings.ToLower(ex)) {
			return true
		}
	}
	return false
}

// versionsIntersect reports whether the two version sets share any label.
func versionsIntersect(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// wholeDays truncates a duration to whole days. Negative durations (comments
// from the future, clock skew) count as zero days old.
func wholeDays(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
