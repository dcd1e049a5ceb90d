package jira

import (
	"fmt"
	"strings"

	"github.com/trackerops/groomer/internal/stale"
)

// StaleSearchJQL builds the JQL for a stale-issue fetch. Status exclusion and
// version filtering are pushed into the query to keep the result set small;
// the classifier re-applies both, so the query is an optimization, not the
// source of truth.
//
// Only assigned issues are fetched: unassigned issues can never be stale and
// there is no one to mention.
func StaleSearchJQL(projectKey string, excludeStatuses, affectsVersions []string) string {
	parts := []string{
		fmt.Sprintf("project = %q", projectKey),
		"assignee is not EMPTY",
	}

	if len(excludeStatuses) > 0 {
		parts = append(parts, fmt.Sprintf("status not in (%s)", quoteList(excludeStatuses)))
	}

	if len(affectsVersions) > 0 {
		parts = append(parts, fmt.Sprintf("affectedVersion in (%s)", quoteList(stale.ExpandVersions(affectsVersions))))
	}

	return strings.Join(parts, " AND ") + " ORDER BY updated ASC"
}

// ProjectSearchJQL builds the JQL for an unfiltered project fetch, used when
// explicit issue keys are targeted and status filtering must not apply.
func ProjectSearchJQL(projectKey string) string {
	return fmt.Sprintf("project = %q ORDER BY updated ASC", projectKey)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
