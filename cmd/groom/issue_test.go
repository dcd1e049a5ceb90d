package main

import "testing"

func TestIssueKeyArg(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"PROJ-123", "PROJ-123"},
		{"https://jira.example.com/browse/OCPBUGS-42", "OCPBUGS-42"},
		{"https://company.atlassian.net/browse/PROJ-7", "PROJ-7"},
	}
	for _, tt := range tests {
		if got := issueKeyArg(tt.arg); got != tt.want {
			t.Errorf("issueKeyArg(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}
