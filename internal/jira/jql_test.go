package jira

import (
	"strings"
	"testing"
)

func TestStaleSearchJQL(t *testing.T) {
	jql := StaleSearchJQL("OCPBUGS", []string{"Verified", "Closed"}, []string{"4.18"})

	for _, want := range []string{
		`project = "OCPBUGS"`,
		"assignee is not EMPTY",
		`status not in ("Verified", "Closed")`,
		`affectedVersion in ("4.18", "4.18.z")`,
		"ORDER BY updated ASC",
	} {
		if !strings.Contains(jql, want) {
			t.Errorf("JQL missing %q:\n%s", want, jql)
		}
	}
}

func TestStaleSearchJQLNoFilters(t *testing.T) {
	jql := StaleSearchJQL("PROJ", nil, nil)

	if strings.Contains(jql, "status not in") {
		t.Errorf("no exclude clause expected:\n%s", jql)
	}
	if strings.Contains(jql, "affectedVersion") {
		t.Errorf("no version clause expected:\n%s", jql)
	}
	if !strings.Contains(jql, "assignee is not EMPTY") {
		t.Errorf("assigned-only clause always applies:\n%s", jql)
	}
}

func TestProjectSearchJQL(t *testing.T) {
	jql := ProjectSearchJQL("PROJ")
	if jql != `project = "PROJ" ORDER BY updated ASC` {
		t.Errorf("JQL = %q", jql)
	}
}
