package api

import (
	"net/http"

	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

// --- Auth ---

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tracker.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Username(req.Username); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	if s.issuer == nil {
		writeError(w, http.StatusNotImplemented, "token issuing is not configured")
		return
	}
	token, claims, err := s.issuer.Mint(req.Username)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.TokenResponse{Token: token, ExpiresAt: claims.Expires()})
}

// --- Projects ---

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := s.tracker.ListProjects(r.Context(), tracker.ProjectFilter{
		Search:     q.Get("search"),
		CategoryID: q.Get("categoryId"),
	})
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req tracker.CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	project, err := s.tracker.CreateProject(r.Context(), req)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.tracker.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- Issues ---

func (s *Server) listProjectIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.tracker.ListIssues(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) createProjectIssue(w http.ResponseWriter, r *http.Request) {
	var req tracker.CreateIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issue, err := s.tracker.CreateIssue(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.tracker.GetIssue(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	var req tracker.UpdateIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.UpdateIssue(r.Context(), r.PathValue("id"), req); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateIssueStatus(w http.ResponseWriter, r *http.Request) {
	var req tracker.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) assignIssue(w http.ResponseWriter, r *http.Request) {
	var req tracker.AssignIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.AssignIssue(r.Context(), r.PathValue("id"), req.AssigneeID); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) linkIssue(w http.ResponseWriter, r *http.Request) {
	var req tracker.LinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.tracker.Link(r.Context(), r.PathValue("id"), req.TargetIssueID); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comments ---

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.tracker.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req tracker.AddCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	comment, err := s.tracker.AddComment(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// --- Reference data ---

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.tracker.ListUsers(r.Context())
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.tracker.ListCategories(r.Context())
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req tracker.CreateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, err := s.tracker.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}
