package service

import (
	"context"
	"strings"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

// AddComment stores a trimmed comment stamped with the current UTC time.
func (s *Service) AddComment(ctx context.Context, issueID string, req tracker.AddCommentRequest) (*tracker.CommentView, error) {
	if err := validate.CommentBody(req.Body); err != nil {
		return nil, err
	}
	if err := s.requireIssue(ctx, issueID, msgIssueNotFound); err != nil {
		return nil, err
	}
	author, err := s.resolver.User(ctx, RoleAuthor, req.AuthorID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		IssueID:   issueID,
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: s.now(),
	}
	if author != nil {
		c.AuthorID, c.AuthorName = &author.ID, &author.Name
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	view := commentView(c)
	return &view, nil
}

// ListComments returns the comments on an issue in creation order.
func (s *Service) ListComments(ctx context.Context, issueID string) ([]tracker.CommentView, error) {
	if err := s.requireIssue(ctx, issueID, msgIssueNotFound); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, issueID)
	if err != nil {
		return nil, err
	}
	views := make([]tracker.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView(c))
	}
	return views, nil
}
