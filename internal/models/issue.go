package models

import "time"

// IssueStatus represents the state of an issue.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "Todo"
	IssueStatusInProgress IssueStatus = "InProgress"
	IssueStatusDone       IssueStatus = "Done"
)

// IssueStatuses lists every known status in board order.
var IssueStatuses = []IssueStatus{IssueStatusTodo, IssueStatusInProgress, IssueStatusDone}

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	for _, known := range IssueStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Issue represents a unit of work inside a project.
type Issue struct {
	ID          string      `db:"id"`
	ProjectID   string      `db:"project_id"`
	Title       string      `db:"title"`
	Summary     string      `db:"summary"`
	StoryPoints *int        `db:"story_points"`
	Status      IssueStatus `db:"status"`
	AssigneeID  *string     `db:"assignee_id"`
	ReporterID  *string     `db:"reporter_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`

	// Populated on read.
	AssigneeName   *string  `db:"assignee_name"`
	ReporterName   *string  `db:"reporter_name"`
	CommentCount   int      `db:"comment_count"`
	LinkedIssueIDs []string `db:"-"`
}

// Comment is a note attached to an issue.
type Comment struct {
	ID         string    `db:"id"`
	IssueID    string    `db:"issue_id"`
	Body       string    `db:"body"`
	AuthorID   *string   `db:"author_id"`
	AuthorName *string   `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
}

// IssueLink is one directed edge between two issues. A relation between two
// issues is always stored as a pair of edges.
type IssueLink struct {
	ID            string `db:"id"`
	IssueID       string `db:"issue_id"`
	LinkedIssueID string `db:"linked_issue_id"`
}
