package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/trackerops/groomer/internal/stale"
)

func TestToSnapshot(t *testing.T) {
	issue := &Issue{
		Key: "PROJ-1",
		Fields: IssueFields{
			Summary:  "Broken thing",
			Status:   &StatusField{Name: "Assigned"},
			Assignee: &UserField{Name: "alice", DisplayName: "Alice A"},
			Versions: []VersionField{{Name: "4.18"}, {Name: "4.18.z"}},
			Comment: &CommentPage{
				Total: 2,
				Comments: []IssueComment{
					{Author: &UserField{DisplayName: "Bob"}, Body: "first", Created: "2025-05-01T10:00:00.000+0000"},
					{Author: &UserField{DisplayName: "Alice A"}, Body: "second", Created: "2025-05-10T10:00:00.000+0000"},
				},
			},
			Created: "2025-04-01T09:00:00.000+0000",
			Updated: "2025-05-10T10:00:00.000+0000",
		},
	}

	snap := ToSnapshot(issue)

	if snap.Key != "PROJ-1" || snap.Status != "Assigned" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Assignee == nil || snap.Assignee.Name != "alice" || snap.Assignee.DisplayName != "Alice A" {
		t.Errorf("assignee = %+v", snap.Assignee)
	}
	if len(snap.AffectedVersions) != 2 {
		t.Errorf("versions = %v", snap.AffectedVersions)
	}
	if len(snap.Comments) != 2 || snap.Comments[1].Author != "Alice A" {
		t.Errorf("comments = %+v", snap.Comments)
	}
	latest := snap.LatestComment()
	if latest == nil || latest.Body != "second" {
		t.Errorf("latest = %+v", latest)
	}
	if snap.Created.IsZero() || snap.Updated.IsZero() {
		t.Error("created/updated should parse")
	}
}

func TestToSnapshotUnassigned(t *testing.T) {
	snap := ToSnapshot(&Issue{Key: "PROJ-2", Fields: IssueFields{Status: &StatusField{Name: "New"}}})
	if snap.Assignee != nil {
		t.Errorf("assignee = %+v, want nil", snap.Assignee)
	}
}

func TestToSnapshotBadCommentTimestamp(t *testing.T) {
	issue := &Issue{
		Key: "PROJ-3",
		Fields: IssueFields{
			Assignee: &UserField{Name: "alice"},
			Comment: &CommentPage{
				Total:    1,
				Comments: []IssueComment{{Body: "undated", Created: "garbage"}},
			},
		},
	}

	snap := ToSnapshot(issue)
	if len(snap.Comments) != 1 {
		t.Fatalf("comments = %+v", snap.Comments)
	}
	// Zero timestamp means infinitely old: the comment cannot mask staleness.
	if !snap.Comments[0].Created.IsZero() {
		t.Errorf("created = %v, want zero", snap.Comments[0].Created)
	}
}

func TestMentionNameFallback(t *testing.T) {
	tests := []struct {
		user UserField
		want string
	}{
		{UserField{Name: "alice", AccountID: "acc1", DisplayName: "Alice"}, "alice"},
		{UserField{AccountID: "acc1", DisplayName: "Alice"}, "acc1"},
		{UserField{DisplayName: "Alice"}, "Alice"},
	}
	for _, tt := range tests {
		if got := mentionName(&tt.user); got != tt.want {
			t.Errorf("mentionName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestSnapshotSourceQuery(t *testing.T) {
	var gotJQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotJQL = r.URL.Query().Get("jql")
		fmt.Fprintf(w, `{"startAt":0,"maxResults":50,"total":1,"issues":[%s]}`,
			issueJSON("OCPBUGS-1", "Assigned", "alice", "on it"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "tok")
	client.limiter = rate.NewLimiter(rate.Inf, 1)
	source := &SnapshotSource{Client: client}

	snaps, err := source.Query(context.Background(), "OCPBUGS", stale.SourceFilters{
		ExcludeStatuses: []string{"Closed"},
		AffectsVersions: []string{"4.18"},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(snaps) != 1 || snaps[0].Key != "OCPBUGS-1" {
		t.Fatalf("snapshots = %+v", snaps)
	}
	if len(snaps[0].Comments) != 1 {
		t.Error("snapshot should carry comments from the single search call")
	}
	if !strings.Contains(gotJQL, `status not in ("Closed")`) {
		t.Errorf("exclusion not pushed into JQL: %q", gotJQL)
	}
}

func TestSnapshotSourceQueryUnfiltered(t *testing.T) {
	var gotJQL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotJQL = r.URL.Query().Get("jql")
		fmt.Fprint(w, `{"startAt":0,"maxResults":50,"total":0,"issues":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "tok")
	client.limiter = rate.NewLimiter(rate.Inf, 1)
	source := &SnapshotSource{Client: client}

	if _, err := source.Query(context.Background(), "PROJ", stale.SourceFilters{}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if strings.Contains(gotJQL, "status not in") {
		t.Errorf("unfiltered fetch must not exclude statuses: %q", gotJQL)
	}
}
