// Package health summarizes a project board: how much is done, and how much
// of the open work is still unestimated or unowned.
package health

import (
	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Summary is the computed health of one board.
type Summary struct {
	Total       int                        `json:"total"`
	ByStatus    map[models.IssueStatus]int `json:"byStatus"`
	Points      int                        `json:"points"`
	DonePoints  int                        `json:"donePoints"`
	Unestimated int                        `json:"unestimated"` // open issues without story points
	Unassigned  int                        `json:"unassigned"`  // open issues without an assignee
	Score       Score                      `json:"score"`
}

// Score breaks the 0-100 health score into its parts.
type Score struct {
	Total      int `json:"total"`
	Completion int `json:"completion"` // 0-40
	Estimation int `json:"estimation"` // 0-30
	Ownership  int `json:"ownership"`  // 0-30
}

// Summarize computes the board summary for issues.
func Summarize(issues []tracker.IssueView) *Summary {
	s := &Summary{ByStatus: make(map[models.IssueStatus]int, len(models.IssueStatuses))}
	for _, st := range models.IssueStatuses {
		s.ByStatus[st] = 0
	}

	open := 0
	for _, i := range issues {
		s.Total++
		s.ByStatus[i.Status]++

		done := i.Status == models.IssueStatusDone
		if i.StoryPoints != nil {
			s.Points += *i.StoryPoints
			if done {
				s.DonePoints += *i.StoryPoints
			}
		}
		if done {
			continue
		}
		open++
		if i.StoryPoints == nil {
			s.Unestimated++
		}
		if i.Assignee == nil {
			s.Unassigned++
		}
	}

	s.Score.Completion = scoreCompletion(s, 40)
	s.Score.Estimation = scoreShare(open, s.Unestimated, 30)
	s.Score.Ownership = scoreShare(open, s.Unassigned, 30)
	s.Score.Total = s.Score.Completion + s.Score.Estimation + s.Score.Ownership
	return s
}

// scoreCompletion uses done points when the board is estimated, done issue
// count otherwise. An empty board scores full points.
func scoreCompletion(s *Summary, maxPoints int) int {
	if s.Total == 0 {
		return maxPoints
	}
	if s.Points > 0 {
		return maxPoints * s.DonePoints / s.Points
	}
	return maxPoints * s.ByStatus[models.IssueStatusDone] / s.Total
}

// scoreShare gives full points when no open issue is missing the property.
func scoreShare(open, missing, maxPoints int) int {
	if open == 0 {
		return maxPoints
	}
	return maxPoints * (open - missing) / open
}
