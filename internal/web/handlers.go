package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/joescharf/simplejira/internal/health"
	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", "Log in", "", nil)
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Could not read the form.")
		return
	}
	session, err := s.login(r.Context(), r.PostForm.Get("username"))
	if err != nil {
		if tracker.KindOf(err) != 0 {
			redirectWithError(w, r, "/login", err.Error())
			return
		}
		s.logger.Error("web login failed", "error", err)
		redirectWithError(w, r, "/login", "Login failed.")
		return
	}
	id, err := s.sessions.create(session)
	if err != nil {
		s.logger.Error("create web session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.secure})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type projectsData struct {
	Search     string
	CategoryID string
	Categories []tracker.Ref
	Users      []tracker.Ref
	Projects   []tracker.ProjectView
}

func (s *Server) projectsPage(w http.ResponseWriter, r *http.Request, req request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := projectsData{Search: q.Get("search"), CategoryID: q.Get("categoryId")}

	var err error
	if data.Projects, err = req.tracker.ListProjects(ctx, tracker.ProjectFilter{Search: data.Search, CategoryID: data.CategoryID}); err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	if data.Categories, err = req.tracker.ListCategories(ctx); err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	if data.Users, err = req.tracker.ListUsers(ctx); err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	s.render(w, r, http.StatusOK, "projects", "Projects", req.session.Username, data)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request, req request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/projects", "Could not read the form.")
		return
	}
	f := r.PostForm
	project, err := req.tracker.CreateProject(r.Context(), tracker.CreateProjectRequest{
		Name:       f.Get("name"),
		Key:        f.Get("key"),
		Type:       f.Get("type"),
		Avatar:     f.Get("avatar"),
		CategoryID: optional(f.Get("categoryId")),
		LeadID:     optional(f.Get("leadId")),
	})
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	http.Redirect(w, r, "/projects/"+project.ID, http.StatusSeeOther)
}

type column struct {
	Status models.IssueStatus
	Issues []tracker.IssueView
}

type boardData struct {
	Project *tracker.ProjectView
	Columns []column
	Users   []tracker.Ref
	Health  *health.Summary
}

func (s *Server) boardPage(w http.ResponseWriter, r *http.Request, req request) {
	ctx := r.Context()
	id := r.PathValue("id")

	project, err := req.tracker.GetProject(ctx, id)
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	issues, err := req.tracker.ListIssues(ctx, id)
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	users, err := req.tracker.ListUsers(ctx)
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}

	data := boardData{Project: project, Users: users, Health: health.Summarize(issues)}
	for _, status := range models.IssueStatuses {
		col := column{Status: status}
		for _, issue := range issues {
			if issue.Status == status {
				col.Issues = append(col.Issues, issue)
			}
		}
		data.Columns = append(data.Columns, col)
	}
	s.render(w, r, http.StatusOK, "board", project.Name, req.session.Username, data)
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request, req request) {
	projectID := r.PathValue("id")
	board := "/projects/" + projectID
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, board, "Could not read the form.")
		return
	}
	f := r.PostForm
	points, ok := storyPoints(f.Get("storyPoints"))
	if !ok {
		redirectWithError(w, r, board, msgPointsNotNumber)
		return
	}
	issue, err := req.tracker.CreateIssue(r.Context(), projectID, tracker.CreateIssueRequest{
		Title:       f.Get("title"),
		Summary:     f.Get("summary"),
		StoryPoints: points,
		AssigneeID:  optional(f.Get("assigneeId")),
		ReporterID:  optional(f.Get("reporterId")),
	})
	if err != nil {
		s.fail(w, r, req, board, err)
		return
	}
	http.Redirect(w, r, "/issues/"+issue.ID, http.StatusSeeOther)
}

type issueData struct {
	Issue      *tracker.IssueView
	Statuses   []models.IssueStatus
	Users      []tracker.Ref
	AssigneeID string
	Siblings   []tracker.IssueView
	Linked     []tracker.IssueView
	Comments   []tracker.CommentView
}

func (s *Server) issuePage(w http.ResponseWriter, r *http.Request, req request) {
	ctx := r.Context()
	id := r.PathValue("id")

	issue, err := req.tracker.GetIssue(ctx, id)
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	data := issueData{Issue: issue, Statuses: models.IssueStatuses}
	if issue.Assignee != nil {
		data.AssigneeID = issue.Assignee.ID
	}
	if data.Users, err = req.tracker.ListUsers(ctx); err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	if data.Comments, err = req.tracker.ListComments(ctx, id); err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}

	projectIssues, err := req.tracker.ListIssues(ctx, issue.ProjectID)
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	byID := make(map[string]tracker.IssueView, len(projectIssues))
	for _, other := range projectIssues {
		byID[other.ID] = other
		if other.ID != issue.ID {
			data.Siblings = append(data.Siblings, other)
		}
	}
	for _, linkedID := range issue.LinkedIssueIDs {
		if linked, ok := byID[linkedID]; ok {
			data.Linked = append(data.Linked, linked)
			continue
		}
		linked, err := req.tracker.GetIssue(ctx, linkedID)
		if err != nil {
			if tracker.IsNotFound(err) {
				continue
			}
			s.fail(w, r, req, "/projects", err)
			return
		}
		data.Linked = append(data.Linked, *linked)
	}

	s.render(w, r, http.StatusOK, "issue", issue.Title, req.session.Username, data)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request, req request) {
	id := r.PathValue("id")
	back := "/issues/" + id
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, back, "Could not read the form.")
		return
	}
	f := r.PostForm
	points, ok := storyPoints(f.Get("storyPoints"))
	if !ok {
		redirectWithError(w, r, back, msgPointsNotNumber)
		return
	}
	err := req.tracker.UpdateIssue(r.Context(), id, tracker.UpdateIssueRequest{
		Title:       f.Get("title"),
		Summary:     f.Get("summary"),
		StoryPoints: points,
	})
	if err != nil {
		s.fail(w, r, req, back, err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request, req request) {
	id := r.PathValue("id")
	back := "/issues/" + id
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, back, "Could not read the form.")
		return
	}
	if err := req.tracker.UpdateStatus(r.Context(), id, models.IssueStatus(r.PostForm.Get("status"))); err != nil {
		s.fail(w, r, req, back, err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) assignIssue(w http.ResponseWriter, r *http.Request, req request) {
	id := r.PathValue("id")
	back := "/issues/" + id
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, back, "Could not read the form.")
		return
	}
	if err := req.tracker.AssignIssue(r.Context(), id, optional(r.PostForm.Get("assigneeId"))); err != nil {
		s.fail(w, r, req, back, err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) linkIssue(w http.ResponseWriter, r *http.Request, req request) {
	id := r.PathValue("id")
	back := "/issues/" + id
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, back, "Could not read the form.")
		return
	}
	if err := req.tracker.Link(r.Context(), id, r.PostForm.Get("targetIssueId")); err != nil {
		s.fail(w, r, req, back, err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request, req request) {
	id := r.PathValue("id")
	back := "/issues/" + id
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, back, "Could not read the form.")
		return
	}
	_, err := req.tracker.AddComment(r.Context(), id, tracker.AddCommentRequest{
		Body:     r.PostForm.Get("body"),
		AuthorID: optional(r.PostForm.Get("authorId")),
	})
	if err != nil {
		s.fail(w, r, req, back, err)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (s *Server) usersPage(w http.ResponseWriter, r *http.Request, req request) {
	users, err := req.tracker.ListUsers(r.Context())
	if err != nil {
		s.fail(w, r, req, "/projects", err)
		return
	}
	s.render(w, r, http.StatusOK, "users", "People", req.session.Username, users)
}

const msgPointsNotNumber = "Story points must be a whole number."

// optional turns an empty form value into nil.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// storyPoints parses the story points field. Empty means unset.
func storyPoints(v string) (*int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, false
	}
	return &n, true
}
