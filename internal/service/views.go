package service

import (
	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

func ref(id, name *string) *tracker.Ref {
	if id == nil {
		return nil
	}
	r := &tracker.Ref{ID: *id}
	if name != nil {
		r.Name = *name
	}
	return r
}

func projectView(p *models.Project) tracker.ProjectView {
	return tracker.ProjectView{
		ID:       p.ID,
		Name:     p.Name,
		Key:      p.Key,
		Type:     p.Type,
		Avatar:   p.Avatar,
		Category: ref(p.CategoryID, p.CategoryName),
		Lead:     ref(p.LeadID, p.LeadName),
	}
}

func issueView(i *models.Issue) tracker.IssueView {
	linked := i.LinkedIssueIDs
	if linked == nil {
		linked = []string{}
	}
	return tracker.IssueView{
		ID:             i.ID,
		ProjectID:      i.ProjectID,
		Title:          i.Title,
		Summary:        i.Summary,
		StoryPoints:    i.StoryPoints,
		Status:         i.Status,
		Assignee:       ref(i.AssigneeID, i.AssigneeName),
		Reporter:       ref(i.ReporterID, i.ReporterName),
		CommentsCount:  i.CommentCount,
		LinkedIssueIDs: linked,
	}
}

func commentView(c *models.Comment) tracker.CommentView {
	return tracker.CommentView{
		ID:        c.ID,
		IssueID:   c.IssueID,
		Body:      c.Body,
		Author:    ref(c.AuthorID, c.AuthorName),
		CreatedAt: c.CreatedAt,
	}
}
