package store

import (
	"context"
	"errors"

	"github.com/joescharf/simplejira/internal/models"
)

var (
	// ErrNotFound is returned when a row looked up by id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write breaks a unique constraint.
	ErrConflict = errors.New("conflict")
)

// ProjectFilter narrows ListProjects. Empty fields match everything.
type ProjectFilter struct {
	Search     string
	CategoryID string
}

// Store defines the persistence interface for simplejira.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ProjectKeyExists(ctx context.Context, key string) (bool, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*models.Project, error)

	// Issues
	CreateIssue(ctx context.Context, issue *models.Issue, linkedIssueIDs []string) error
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	IssueExists(ctx context.Context, id string) (bool, error)
	ListIssues(ctx context.Context, projectID string) ([]*models.Issue, error)
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssueStatus(ctx context.Context, id string, status models.IssueStatus) error
	UpdateIssueAssignee(ctx context.Context, id string, assigneeID *string) error

	// Links
	LinkIssues(ctx context.Context, issueID, linkedIssueID string) (bool, error)
	ListLinks(ctx context.Context) ([]*models.IssueLink, error)

	// Comments
	CreateComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, issueID string) ([]*models.Comment, error)

	// Reference data
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	ImportReferenceData(ctx context.Context, users []*models.User, categories []*models.Category) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
