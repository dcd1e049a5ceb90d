package stale

import (
	"context"
	"fmt"
	"time"

	"github.com/trackerops/groomer/internal/debug"
	"github.com/trackerops/groomer/internal/types"
)

// SourceFilters narrows an issue fetch at the source. Exclusion and version
// filters are also re-applied by the classifier; pushing them into the query
// just keeps the result set small.
type SourceFilters struct {
	ExcludeStatuses []string
	AffectsVersions []string
	MaxResults      int
}

// IssueSource fetches the full issue set for a project in one query call,
// with assignee, complete comment list, and affected versions embedded.
// No per-issue follow-up fetches are permitted; that single-call contract is
// a performance invariant of the whole system.
type IssueSource interface {
	Query(ctx context.Context, projectKey string, filters SourceFilters) ([]types.IssueSnapshot, error)
}

// Runner wires the pipeline stages to an issue source and comment sink. It
// is the implementation behind the find_stale_issues and
// comment_on_stale_issues operations.
type Runner struct {
	Source IssueSource
	Sink   CommentSink

	// now is overridable for deterministic tests; defaults to time.Now.
	now func() time.Time
}

// NewRunner creates a Runner over the given collaborators.
func NewRunner(source IssueSource, sink CommentSink) *Runner {
	return &Runner{Source: source, Sink: sink, now: time.Now}
}

// FindOptions are the parameters of a stale-issue search.
type FindOptions struct {
	ProjectKey        string
	DaysThreshold     int
	IncludeNoComments bool
	StatusFilter      []string
	AffectsVersions   []string
	ExcludeStatuses   []string
	MaxResults        int
}

// FindStaleIssues fetches the project's issues and classifies each one,
// returning summaries of the stale set in fetch order.
func (r *Runner) FindStaleIssues(ctx context.Context, opts FindOptions) ([]types.StaleIssue, error) {
	if opts.ProjectKey == "" {
		return nil, fmt.Errorf("project_key is required")
	}

	policy := NewPolicy(r.now(), opts.DaysThreshold, opts.ExcludeStatuses, opts.AffectsVersions)

	snapshots, err := r.fetch(ctx, opts.ProjectKey, SourceFilters{
		ExcludeStatuses: policy.ExcludeStatuses,
		AffectsVersions: opts.AffectsVersions,
		MaxResults:      opts.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	statusAllowed := buildStatusFilter(opts.StatusFilter)

	var stale []types.StaleIssue
	for i := range snapshots {
		snap := &snapshots[i]
		// Exclusion runs inside Classify, before staleness; the optional
		// status filter only narrows the already-eligible set.
		verdict := Classify(snap, policy)
		if verdict == nil || !verdict.IsStale {
			continue
		}
		if verdict.Reason == types.ReasonNoComments && !opts.IncludeNoComments {
			continue
		}
		if statusAllowed != nil && !statusAllowed(snap.Status) {
			continue
		}
		stale = append(stale, staleSummary(snap, verdict))
	}

	debug.Logf("stale: classified %d/%d issues stale in %s\n", len(stale), len(snapshots), opts.ProjectKey)
	return stale, nil
}

// CommentOptions are the parameters of a batch comment run.
type CommentOptions struct {
	Mode            types.ExecutionMode
	Scope           types.TargetScope
	SpecificIssues  []string
	ProjectKey      string
	DaysThreshold   int
	Template        string
	ExcludeStatuses []string
	AffectsVersions []string
	MaxResults      int
}

// CommentOnStaleIssues builds and executes a comment plan. Configuration
// errors (bad mode, all_stale without a project key) surface before any
// network call is made.
func (r *Runner) CommentOnStaleIssues(ctx context.Context, opts CommentOptions) (*Report, error) {
	if opts.Mode == "" {
		opts.Mode = types.ModeDryRun
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("invalid mode %q: use %q or %q", opts.Mode, types.ModeDryRun, types.ModeLive)
	}
	if opts.Scope == "" {
		opts.Scope = types.ScopeAllStale
	}

	switch opts.Scope {
	case types.ScopeAllStale:
		if opts.ProjectKey == "" {
			return nil, fmt.Errorf("project_key is required when target_scope is %q", types.ScopeAllStale)
		}
	case types.ScopeSpecificIssues:
		if len(opts.SpecificIssues) == 0 {
			return nil, fmt.Errorf("specific_issues is required when target_scope is %q", types.ScopeSpecificIssues)
		}
		if opts.ProjectKey == "" {
			// Specific keys carry their project prefix (e.g. "PROJ-123").
			opts.ProjectKey = projectFromKey(opts.SpecificIssues[0])
			if opts.ProjectKey == "" {
				return nil, fmt.Errorf("cannot derive project from issue key %q", opts.SpecificIssues[0])
			}
		}
	default:
		return nil, fmt.Errorf("invalid target_scope %q: use %q or %q", opts.Scope, types.ScopeAllStale, types.ScopeSpecificIssues)
	}

	policy := NewPolicy(r.now(), opts.DaysThreshold, opts.ExcludeStatuses, opts.AffectsVersions)

	// Explicit targeting bypasses the classifier, so the source must not
	// pre-filter either: a directly named issue is reachable in any status
	// or version.
	filters := SourceFilters{MaxResults: opts.MaxResults}
	if opts.Scope == types.ScopeAllStale {
		filters.ExcludeStatuses = policy.ExcludeStatuses
		filters.AffectsVersions = opts.AffectsVersions
	}

	snapshots, err := r.fetch(ctx, opts.ProjectKey, filters)
	if err != nil {
		return nil, err
	}

	plan, skipped := Plan(snapshots, PlanOptions{
		Scope:        opts.Scope,
		SpecificKeys: opts.SpecificIssues,
		Template:     opts.Template,
		Policy:       policy,
	})

	result := Execute(ctx, plan, opts.Mode, r.Sink)
	result.SkippedKeys = skipped

	return Summarize(result), nil
}

// fetch wraps the source call so fetch failures carry enough context to
// diagnose (project key, upstream error).
func (r *Runner) fetch(ctx context.Context, projectKey string, filters SourceFilters) ([]types.IssueSnapshot, error) {
	snapshots, err := r.Source.Query(ctx, projectKey, filters)
	if err != nil {
		return nil, fmt.Errorf("fetching issues for project %s: %w", projectKey, err)
	}
	debug.Logf("stale: fetched %d issues from %s\n", len(snapshots), projectKey)
	return snapshots, nil
}

func buildStatusFilter(statuses []string) func(string) bool {
	if len(statuses) == 0 {
		return nil
	}
	return func(status string) bool {
		return statusExcluded(status, statuses) // same normalized matching, inverted use
	}
}

func staleSummary(snap *types.IssueSnapshot, verdict *types.StalenessVerdict) types.StaleIssue {
	s := types.StaleIssue{
		Key:          snap.Key,
		Summary:      snap.Summary,
		Status:       snap.Status,
		Reason:       verdict.Reason,
		AgeDays:      verdict.AgeDays,
		CommentCount: len(snap.Comments),
	}
	if snap.Assignee != nil {
		s.Assignee = snap.Assignee.DisplayName
		if s.Assignee == "" {
			s.Assignee = snap.Assignee.Name
		}
	}
	if !verdict.LastCommentAt.IsZero() {
		t := verdict.LastCommentAt
		s.LastCommentAt = &t
	}
	return s
}

// projectFromKey extracts "PROJ" from "PROJ-123". Returns "" when the key
// has no dash-separated prefix.
func projectFromKey(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '-' {
			return key[:i]
		}
	}
	return ""
}
