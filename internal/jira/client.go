// Package jira provides the REST client and snapshot conversion for the
// groomer hygiene engine. It targets Jira REST API v2 (Server/DC with Bearer
// PAT auth), with Basic auth for Jira Cloud instances.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/trackerops/groomer/internal/debug"
	"github.com/trackerops/groomer/internal/telemetry"
)

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue.
type IssueFields struct {
	Summary   string          `json:"summary"`
	Status    *StatusField    `json:"status"`
	Priority  *PriorityField  `json:"priority"`
	IssueType *IssueTypeField `json:"issuetype"`
	Project   *ProjectField   `json:"project"`
	Assignee  *UserField      `json:"assignee"`
	Reporter  *UserField      `json:"reporter"`
	Versions  []VersionField  `json:"versions"`
	Comment   *CommentPage    `json:"comment"`
	Created   string          `json:"created"`
	Updated   string          `json:"updated"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriorityField represents a Jira issue priority.
type PriorityField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueTypeField represents a Jira issue type.
type IssueTypeField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectField represents a Jira project.
type ProjectField struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// UserField represents a Jira user. Name is the Server/DC login used in
// mention markup; Cloud instances only populate AccountID.
type UserField struct {
	Name         string `json:"name"`
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// VersionField represents an affected version label.
type VersionField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentPage is the embedded comment container returned when the comment
// field is requested in a search or issue fetch.
type CommentPage struct {
	Total    int           `json:"total"`
	Comments []IssueComment `json:"comments"`
}

// IssueComment is one comment on an issue.
type IssueComment struct {
	ID      string     `json:"id"`
	Author  *UserField `json:"author"`
	Body    string     `json:"body"`
	Created string     `json:"created"`
}

// TransitionOption is one workflow transition available on an issue.
type TransitionOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchResult represents a Jira JQL search response.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// APIError is a non-2xx response from Jira. Callers can inspect the status
// code to distinguish permission, not-found, and rate-limit failures.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the request should be retried (rate limiting or
// server-side errors).
func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client provides HTTP access to a Jira instance. All requests go through a
// shared rate limiter (Jira Server instances throttle aggressively) and a
// bounded retry loop for 429/5xx responses.
type Client struct {
	URL        string
	Username   string
	APIToken   string
	HTTPClient *http.Client

	limiter    *rate.Limiter
	maxRetries uint64
}

// NewClient creates a new Jira client. The rate limiter allows 1 request per
// second with a burst of 10.
func NewClient(url, username, apiToken string) *Client {
	return &Client{
		URL:      strings.TrimSuffix(url, "/"),
		Username: username,
		APIToken: apiToken,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(1), 10),
		maxRetries: 3,
	}
}

// searchFields is the field set requested in search/get queries. The comment
// field is included so search results carry the full comment list in the
// same round-trip; staleness classification must never need a per-issue
// follow-up fetch.
const searchFields = "summary,status,priority,issuetype,project,assignee,reporter,versions,comment,created,updated"

// SearchOptions bounds a JQL search.
type SearchOptions struct {
	// MaxResults caps the total number of issues returned. Zero means the
	// default cap of 50.
	MaxResults int
}

// DefaultMaxResults caps search result sets when the caller does not.
const DefaultMaxResults = 50

// SearchIssues queries Jira using JQL and returns matching issues with
// embedded comments and versions, handling pagination up to the result cap.
func (c *Client) SearchIssues(ctx context.Context, jql string, opts SearchOptions) ([]Issue, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	var allIssues []Issue
	startAt := 0

	for {
		pageSize := limit - len(allIssues)
		if pageSize > 100 {
			pageSize = 100
		}

		params := url.Values{
			"jql":        {jql},
			"fields":     {searchFields},
			"startAt":    {fmt.Sprintf("%d", startAt)},
			"maxResults": {fmt.Sprintf("%d", pageSize)},
		}

		apiURL := fmt.Sprintf("%s/rest/api/2/search?%s", c.URL, params.Encode())

		body, err := c.doRequest(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parse search response: %w", err)
		}

		allIssues = append(allIssues, result.Issues...)

		if len(allIssues) >= limit || startAt+len(result.Issues) >= result.Total || len(result.Issues) == 0 {
			break
		}
		startAt += len(result.Issues)
	}

	if len(allIssues) > limit {
		allIssues = allIssues[:limit]
	}
	return allIssues, nil
}

// GetIssue fetches a single Jira issue by key (e.g., "PROJ-123"), including
// its comments.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s?fields=%s", c.URL, url.PathEscape(key), searchFields)

	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}

	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("parse issue response: %w", err)
	}

	return &issue, nil
}

// CreateIssue creates a new issue in Jira.
// fields should include "project", "summary", "issuetype", and optionally other fields.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]interface{}) (*Issue, error) {
	payload := map[string]interface{}{"fields": fields}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal create request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/2/issue", c.URL)

	body, err := c.doRequest(ctx, "POST", apiURL, data)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	// Create response only returns id, key, self. Fetch the full issue.
	var created struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("parse create response: %w", err)
	}

	return c.GetIssue(ctx, created.Key)
}

// UpdateIssue updates an existing Jira issue by key.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}) error {
	payload := map[string]interface{}{"fields": fields}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal update request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s", c.URL, url.PathEscape(key))

	_, err = c.doRequest(ctx, "PUT", apiURL, data)
	if err != nil {
		return fmt.Errorf("update issue %s: %w", key, err)
	}

	return nil
}

// AddComment posts a comment to an issue. Errors surface as *APIError so
// callers can record them without aborting a batch.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	payload := map[string]string{"body": body}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s/comment", c.URL, url.PathEscape(key))

	_, err = c.doRequest(ctx, "POST", apiURL, data)
	if err != nil {
		return fmt.Errorf("add comment to %s: %w", key, err)
	}

	return nil
}

// Transitions lists the workflow transitions currently available on an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]TransitionOption, error) {
	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", c.URL, url.PathEscape(key))

	body, err := c.doRequest(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list transitions for %s: %w", key, err)
	}

	var result struct {
		Transitions []TransitionOption `json:"transitions"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse transitions response: %w", err)
	}

	return result.Transitions, nil
}

// TransitionIssue moves an issue through the named workflow transition.
// Matching is case-insensitive; an unavailable status is an error naming the
// status and the transitions that are available.
func (c *Client) TransitionIssue(ctx context.Context, key, statusName string) error {
	transitions, err := c.Transitions(ctx, key)
	if err != nil {
		return err
	}

	var id string
	var available []string
	for _, tr := range transitions {
		available = append(available, tr.Name)
		if strings.EqualFold(tr.Name, statusName) {
			id = tr.ID
			break
		}
	}
	if id == "" {
		return fmt.Errorf("status %q not available for %s (available: %s)",
			statusName, key, strings.Join(available, ", "))
	}

	payload := map[string]interface{}{
		"transition": map[string]string{"id": id},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal transition request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", c.URL, url.PathEscape(key))
	if _, err := c.doRequest(ctx, "POST", apiURL, data); err != nil {
		return fmt.Errorf("transition %s to %q: %w", key, statusName, err)
	}

	return nil
}

// BrowseURL returns the human-facing URL for an issue key.
func (c *Client) BrowseURL(key string) string {
	return fmt.Sprintf("%s/browse/%s", c.URL, key)
}

// doRequest executes an authenticated HTTP request through the rate limiter
// and retry loop, returning the response body.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("jira URL not configured")
	}
	if c.APIToken == "" {
		return nil, fmt.Errorf("jira API token not configured")
	}

	ctx, span := telemetry.Tracer("").Start(ctx, "jira."+method)
	defer span.End()

	var respBody []byte
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		var err error
		respBody, err = c.doOnce(ctx, method, apiURL, body)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.retryable() {
			debug.Logf("jira: retrying %s %s after %d\n", method, apiURL, apiErr.StatusCode)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return respBody, nil
}

// doOnce executes a single HTTP round-trip without retry.
func (c *Client) doOnce(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "groomer/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// PUT and transition POST return 204 No Content on success
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

// setAuth sets the appropriate authentication header on the request.
// Configurations with a username (Jira Cloud) use Basic auth; Server/DC
// uses a Bearer personal access token.
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}
}
