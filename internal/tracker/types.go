package tracker

import (
	"time"

	"github.com/joescharf/simplejira/internal/models"
)

// Ref is a reference to a user or category.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectView is the outward representation of a project.
type ProjectView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Key      string `json:"key"`
	Type     string `json:"type"`
	Avatar   string `json:"avatar"`
	Category *Ref   `json:"category,omitempty"`
	Lead     *Ref   `json:"lead,omitempty"`
}

// IssueView is the outward representation of an issue.
type IssueView struct {
	ID             string             `json:"id"`
	ProjectID      string             `json:"projectId"`
	Title          string             `json:"title"`
	Summary        string             `json:"summary,omitempty"`
	StoryPoints    *int               `json:"storyPoints,omitempty"`
	Status         models.IssueStatus `json:"status"`
	Assignee       *Ref               `json:"assignee,omitempty"`
	Reporter       *Ref               `json:"reporter,omitempty"`
	CommentsCount  int                `json:"commentsCount"`
	LinkedIssueIDs []string           `json:"linkedIssueIds"`
}

// CommentView is the outward representation of a comment.
type CommentView struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issueId"`
	Body      string    `json:"body"`
	Author    *Ref      `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProjectFilter narrows ListProjects. Empty fields are ignored.
type ProjectFilter struct {
	Search     string
	CategoryID string
}

// CreateProjectRequest carries the fields of a new project.
type CreateProjectRequest struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Key        string  `json:"key,omitempty"`
	Type       string  `json:"type,omitempty"`
	Avatar     string  `json:"avatar,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
	LeadID     *string `json:"leadId,omitempty"`
}

// CreateIssueRequest carries the fields of a new issue. Any status supplied
// by a caller is ignored; new issues start in Todo.
type CreateIssueRequest struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	StoryPoints    *int     `json:"storyPoints,omitempty"`
	AssigneeID     *string  `json:"assigneeId,omitempty"`
	ReporterID     *string  `json:"reporterId,omitempty"`
	LinkedIssueIDs []string `json:"linkedIssueIds,omitempty"`
}

// UpdateIssueRequest overwrites the editable text fields of an issue.
type UpdateIssueRequest struct {
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	StoryPoints *int   `json:"storyPoints,omitempty"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status models.IssueStatus `json:"status"`
}

// AssignIssueRequest is the body of an assignment. A nil AssigneeID clears it.
type AssignIssueRequest struct {
	AssigneeID *string `json:"assigneeId"`
}

// AddCommentRequest carries a new comment.
type AddCommentRequest struct {
	Body     string  `json:"body"`
	AuthorID *string `json:"authorId,omitempty"`
}

// LinkRequest names the target of a new link.
type LinkRequest struct {
	TargetIssueID string `json:"targetIssueId"`
}

// CreateCategoryRequest carries a new category name.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// TokenRequest asks for a bearer token for a display name.
type TokenRequest struct {
	Username string `json:"username"`
}

// TokenResponse carries a freshly minted bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
