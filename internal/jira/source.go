package jira

import (
	"context"

	"github.com/trackerops/groomer/internal/stale"
	"github.com/trackerops/groomer/internal/types"
)

// SnapshotSource adapts the Jira client to the hygiene pipeline's
// stale.IssueSource contract. The client itself already satisfies
// stale.CommentSink through AddComment.
type SnapshotSource struct {
	Client *Client
}

var _ stale.IssueSource = (*SnapshotSource)(nil)
var _ stale.CommentSink = (*Client)(nil)

// Query fetches the project's issues, with comments and versions embedded,
// in a single paginated search. When the filters carry status exclusions the
// exclusion is pushed into the JQL; otherwise the project is fetched
// unfiltered so explicit issue targeting can reach any status.
func (s *SnapshotSource) Query(ctx context.Context, projectKey string, filters stale.SourceFilters) ([]types.IssueSnapshot, error) {
	var jql string
	if len(filters.ExcludeStatuses) > 0 || len(filters.AffectsVersions) > 0 {
		jql = StaleSearchJQL(projectKey, filters.ExcludeStatuses, filters.AffectsVersions)
	} else {
		jql = ProjectSearchJQL(projectKey)
	}

	issues, err := s.Client.SearchIssues(ctx, jql, SearchOptions{MaxResults: filters.MaxResults})
	if err != nil {
		return nil, err
	}

	snapshots := make([]types.IssueSnapshot, 0, len(issues))
	for i := range issues {
		snapshots = append(snapshots, ToSnapshot(&issues[i]))
	}
	return snapshots, nil
}

// ToSnapshot converts a Jira API issue to the immutable snapshot the
// classifier operates on.
func ToSnapshot(issue *Issue) types.IssueSnapshot {
	snap := types.IssueSnapshot{
		Key:     issue.Key,
		Summary: issue.Fields.Summary,
	}

	if issue.Fields.Status != nil {
		snap.Status = issue.Fields.Status.Name
	}
	if issue.Fields.Assignee != nil {
		snap.Assignee = &types.User{
			Name:        mentionName(issue.Fields.Assignee),
			DisplayName: issue.Fields.Assignee.DisplayName,
		}
	}
	for _, v := range issue.Fields.Versions {
		snap.AffectedVersions = append(snap.AffectedVersions, v.Name)
	}
	if issue.Fields.Comment != nil {
		for _, c := range issue.Fields.Comment.Comments {
			comment := types.Comment{Body: c.Body}
			if c.Author != nil {
				comment.Author = c.Author.DisplayName
			}
			// An unparseable created timestamp leaves the zero value, which
			// the classifier treats as infinitely old. A comment we cannot
			// date must not hide a stale issue.
			if t, err := ParseTimestamp(c.Created); err == nil {
				comment.Created = t
			}
			snap.Comments = append(snap.Comments, comment)
		}
	}
	if t, err := ParseTimestamp(issue.Fields.Created); err == nil {
		snap.Created = t
	}
	if t, err := ParseTimestamp(issue.Fields.Updated); err == nil {
		snap.Updated = t
	}

	return snap
}

// mentionName picks the identity used in [~name] mention markup: the
// Server/DC login when present, then the Cloud account ID, then the display
// name as a last resort.
func mentionName(user *UserField) string {
	if user.Name != "" {
		return user.Name
	}
	if user.AccountID != "" {
		return user.AccountID
	}
	return user.DisplayName
}
