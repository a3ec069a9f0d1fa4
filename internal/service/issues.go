package service

import (
	"context"
	"errors"
	"strings"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

const msgIssueNotFound = "Issue not found."

// CreateIssue validates the fields, checks the project, resolves assignee and
// reporter, drops unknown linked ids, then stores the issue in Todo together
// with one outgoing link per linked id.
func (s *Service) CreateIssue(ctx context.Context, projectID string, req tracker.CreateIssueRequest) (*tracker.IssueView, error) {
	if err := validate.Issue(req.Title, req.Summary, req.StoryPoints); err != nil {
		return nil, err
	}

	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, tracker.NotFound(msgProjectNotFound)
		}
		return nil, err
	}

	assignee, err := s.resolver.User(ctx, RoleAssignee, req.AssigneeID)
	if err != nil {
		return nil, err
	}
	reporter, err := s.resolver.User(ctx, RoleReporter, req.ReporterID)
	if err != nil {
		return nil, err
	}
	linked, err := s.resolver.LinkedIssues(ctx, req.LinkedIssueIDs)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	issue := &models.Issue{
		ProjectID:   projectID,
		Title:       title,
		Summary:     summaryOrTitle(req.Summary, title),
		StoryPoints: req.StoryPoints,
		Status:      models.IssueStatusTodo,
	}
	if assignee != nil {
		issue.AssigneeID = &assignee.ID
	}
	if reporter != nil {
		issue.ReporterID = &reporter.ID
	}

	if err := s.store.CreateIssue(ctx, issue, linked); err != nil {
		return nil, err
	}
	return s.GetIssue(ctx, issue.ID)
}

func summaryOrTitle(summary, title string) string {
	if trimmed := strings.TrimSpace(summary); trimmed != "" {
		return trimmed
	}
	return title
}

// GetIssue returns one issue with its counts and references filled in.
func (s *Service) GetIssue(ctx context.Context, id string) (*tracker.IssueView, error) {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	view := issueView(issue)
	return &view, nil
}

func (s *Service) getIssue(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tracker.NotFound(msgIssueNotFound)
	}
	return issue, err
}

func (s *Service) requireIssue(ctx context.Context, id, msg string) error {
	ok, err := s.store.IssueExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return tracker.NotFound(msg)
	}
	return nil
}

// ListIssues returns the issues of a project in creation order.
func (s *Service) ListIssues(ctx context.Context, projectID string) ([]tracker.IssueView, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, tracker.NotFound(msgProjectNotFound)
		}
		return nil, err
	}
	issues, err := s.store.ListIssues(ctx, projectID)
	if err != nil {
		return nil, err
	}
	views := make([]tracker.IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, issueView(issue))
	}
	return views, nil
}

// UpdateIssue overwrites title, summary and story points. Status, people,
// comments and links are left alone.
func (s *Service) UpdateIssue(ctx context.Context, id string, req tracker.UpdateIssueRequest) error {
	issue, err := s.getIssue(ctx, id)
	if err != nil {
		return err
	}
	if err := validate.Issue(req.Title, req.Summary, req.StoryPoints); err != nil {
		return err
	}

	issue.Title = strings.TrimSpace(req.Title)
	issue.Summary = summaryOrTitle(req.Summary, issue.Title)
	issue.StoryPoints = req.StoryPoints
	return s.mapIssueErr(s.store.UpdateIssue(ctx, issue))
}

// UpdateStatus moves an issue to any known status. There is no transition
// graph: every status may follow every other.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	if err := s.requireIssue(ctx, id, msgIssueNotFound); err != nil {
		return err
	}
	if err := validate.Status(status); err != nil {
		return err
	}
	return s.mapIssueErr(s.store.UpdateIssueStatus(ctx, id, status))
}

// AssignIssue sets the assignee, or clears it when assigneeID is nil. A
// supplied user id must exist.
func (s *Service) AssignIssue(ctx context.Context, id string, assigneeID *string) error {
	if err := s.requireIssue(ctx, id, msgIssueNotFound); err != nil {
		return err
	}
	assignee, err := s.resolver.User(ctx, RoleAssignee, assigneeID)
	if err != nil {
		return err
	}
	var resolved *string
	if assignee != nil {
		resolved = &assignee.ID
	}
	return s.mapIssueErr(s.store.UpdateIssueAssignee(ctx, id, resolved))
}

func (s *Service) mapIssueErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return tracker.NotFound(msgIssueNotFound)
	}
	return err
}
