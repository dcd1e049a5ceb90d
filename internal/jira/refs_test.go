package jira

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2024-01-15T10:30:00.000+0000", false},
		{"2024-01-15T10:30:00.000Z", false},
		{"2024-01-15T10:30:00+0000", false},
		{"2024-01-15T10:30:00Z", false},
		{"2024-01-15T10:30:00+05:30", false}, // RFC3339
		{"", true},
		{"not a timestamp", true},
		{"2024-01-15", true},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.in, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
			t.Errorf("ParseTimestamp(%q) = %v", tt.in, got)
		}
	}
}

func TestParseTimestampOffset(t *testing.T) {
	got, err := ParseTimestamp("2024-01-15T10:30:00.000+0200")
	if err != nil {
		t.Fatal(err)
	}
	if got.UTC().Hour() != 8 {
		t.Errorf("offset not applied: %v", got)
	}
}

func TestExtractKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://company.atlassian.net/browse/PROJ-123", "PROJ-123"},
		{"https://jira.example.com/browse/OCPBUGS-42", "OCPBUGS-42"},
		{"https://jira.example.com/issues/PROJ-123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractKey(tt.url); got != tt.want {
			t.Errorf("ExtractKey(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
