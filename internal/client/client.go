// Package client is a typed HTTP client for the simplejira REST API. It
// implements tracker.Tracker so commands and the web UI can run against a
// remote server exactly as they run against the local service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

// ErrUnauthorized is returned when the server rejects the session token.
var ErrUnauthorized = errors.New("unauthorized: log in again")

// Session is the identity a Client acts as. The zero Session sends no
// Authorization header.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has a known expiry in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Client talks to one API server as one Session.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

var _ tracker.Tracker = (*Client)(nil)

// New creates a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, session Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		httpClient: httpClient,
	}
}

// Session returns the session the client acts as.
func (c *Client) Session() Session { return c.session }

// Login asks the server for a token for username and returns the session.
func Login(ctx context.Context, baseURL, username string, httpClient *http.Client) (Session, error) {
	c := New(baseURL, Session{}, httpClient)
	var resp tracker.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/token", tracker.TokenRequest{Username: username}, &resp); err != nil {
		return Session{}, err
	}
	return Session{Token: resp.Token, Username: strings.TrimSpace(username), ExpiresAt: resp.ExpiresAt}, nil
}

// do builds the request, attaches the bearer token, and decodes the JSON
// response into result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, method, path, respBody)
	}
	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	return nil
}

// statusError maps an error response back to a tracker outcome.
func statusError(status int, method, path string, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	switch status {
	case http.StatusBadRequest:
		return tracker.Validation(msg)
	case http.StatusNotFound:
		return tracker.NotFound(msg)
	case http.StatusConflict:
		return tracker.Conflict(msg)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("API error (%d) on %s %s: %s", status, method, path, msg)
	}
}

func escape(id string) string { return url.PathEscape(id) }

// --- Projects ---

func (c *Client) ListProjects(ctx context.Context, filter tracker.ProjectFilter) ([]tracker.ProjectView, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.CategoryID != "" {
		q.Set("categoryId", filter.CategoryID)
	}
	path := "/api/v1/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var projects []tracker.ProjectView
	if err := c.do(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, req tracker.CreateProjectRequest) (*tracker.ProjectView, error) {
	var project tracker.ProjectView
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*tracker.ProjectView, error) {
	var project tracker.ProjectView
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+escape(id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// --- Issues ---

func (c *Client) ListIssues(ctx context.Context, projectID string) ([]tracker.IssueView, error) {
	var issues []tracker.IssueView
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+escape(projectID)+"/issues", nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *Client) CreateIssue(ctx context.Context, projectID string, req tracker.CreateIssueRequest) (*tracker.IssueView, error) {
	var issue tracker.IssueView
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+escape(projectID)+"/issues", req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *Client) GetIssue(ctx context.Context, id string) (*tracker.IssueView, error) {
	var issue tracker.IssueView
	if err := c.do(ctx, http.MethodGet, "/api/v1/issues/"+escape(id), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id string, req tracker.UpdateIssueRequest) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/issues/"+escape(id), req, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/issues/"+escape(id)+"/status", tracker.UpdateStatusRequest{Status: status}, nil)
}

func (c *Client) AssignIssue(ctx context.Context, id string, assigneeID *string) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/issues/"+escape(id)+"/assignee", tracker.AssignIssueRequest{AssigneeID: assigneeID}, nil)
}

func (c *Client) Link(ctx context.Context, sourceID, targetID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/issues/"+escape(sourceID)+"/links", tracker.LinkRequest{TargetIssueID: targetID}, nil)
}

// --- Comments ---

func (c *Client) ListComments(ctx context.Context, issueID string) ([]tracker.CommentView, error) {
	var comments []tracker.CommentView
	if err := c.do(ctx, http.MethodGet, "/api/v1/issues/"+escape(issueID)+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, issueID string, req tracker.AddCommentRequest) (*tracker.CommentView, error) {
	var comment tracker.CommentView
	if err := c.do(ctx, http.MethodPost, "/api/v1/issues/"+escape(issueID)+"/comments", req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// --- Reference data ---

func (c *Client) ListUsers(ctx context.Context) ([]tracker.Ref, error) {
	var users []tracker.Ref
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]tracker.Ref, error) {
	var categories []tracker.Ref
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*tracker.Ref, error) {
	var category tracker.Ref
	if err := c.do(ctx, http.MethodPost, "/api/v1/categories", tracker.CreateCategoryRequest{Name: name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}
