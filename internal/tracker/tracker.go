// Package tracker defines the operations shared by the local service and the
// remote API client, along with their request and response shapes.
package tracker

import (
	"context"

	"github.com/joescharf/simplejira/internal/models"
)

// Tracker is the full set of issue tracker operations.
type Tracker interface {
	// Projects
	ListProjects(ctx context.Context, filter ProjectFilter) ([]ProjectView, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectView, error)
	GetProject(ctx context.Context, id string) (*ProjectView, error)

	// Issues
	ListIssues(ctx context.Context, projectID string) ([]IssueView, error)
	CreateIssue(ctx context.Context, projectID string, req CreateIssueRequest) (*IssueView, error)
	GetIssue(ctx context.Context, id string) (*IssueView, error)
	UpdateIssue(ctx context.Context, id string, req UpdateIssueRequest) error
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
	AssignIssue(ctx context.Context, id string, assigneeID *string) error
	Link(ctx context.Context, sourceID, targetID string) error

	// Comments
	ListComments(ctx context.Context, issueID string) ([]CommentView, error)
	AddComment(ctx context.Context, issueID string, req AddCommentRequest) (*CommentView, error)

	// Reference data
	ListUsers(ctx context.Context) ([]Ref, error)
	ListCategories(ctx context.Context) ([]Ref, error)
	CreateCategory(ctx context.Context, name string) (*Ref, error)
}
