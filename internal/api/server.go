package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/joescharf/simplejira/internal/auth"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Server provides the REST API handlers.
type Server struct {
	tracker     tracker.Tracker
	issuer      *auth.Issuer
	requireAuth bool
	logger      *slog.Logger
}

// Options configures a Server.
type Options struct {
	// Issuer mints tokens for POST /api/v1/auth/token and verifies bearer
	// tokens when RequireAuth is set.
	Issuer *auth.Issuer
	// RequireAuth rejects requests without a valid bearer token. When false
	// every request runs as the dev user.
	RequireAuth bool
	Logger      *slog.Logger
}

// NewServer creates a new API server over t.
func NewServer(t tracker.Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tracker:     t,
		issuer:      opts.Issuer,
		requireAuth: opts.RequireAuth && opts.Issuer != nil,
		logger:      logger,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("POST /api/v1/auth/token", s.issueToken)

	mux.Handle("GET /api/v1/projects", s.authed(s.listProjects))
	mux.Handle("POST /api/v1/projects", s.authed(s.createProject))
	mux.Handle("GET /api/v1/projects/{id}", s.authed(s.getProject))
	mux.Handle("GET /api/v1/projects/{id}/issues", s.authed(s.listProjectIssues))
	mux.Handle("POST /api/v1/projects/{id}/issues", s.authed(s.createProjectIssue))

	mux.Handle("GET /api/v1/issues/{id}", s.authed(s.getIssue))
	mux.Handle("PATCH /api/v1/issues/{id}", s.authed(s.updateIssue))
	mux.Handle("PATCH /api/v1/issues/{id}/status", s.authed(s.updateIssueStatus))
	mux.Handle("PATCH /api/v1/issues/{id}/assignee", s.authed(s.assignIssue))
	mux.Handle("GET /api/v1/issues/{id}/comments", s.authed(s.listComments))
	mux.Handle("POST /api/v1/issues/{id}/comments", s.authed(s.addComment))
	mux.Handle("POST /api/v1/issues/{id}/links", s.authed(s.linkIssue))

	mux.Handle("GET /api/v1/users", s.authed(s.listUsers))
	mux.Handle("GET /api/v1/categories", s.authed(s.listCategories))
	mux.Handle("POST /api/v1/categories", s.authed(s.createCategory))

	return s.logRequests(corsMiddleware(mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeTrackerError maps an operation outcome to its HTTP status.
func (s *Server) writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch tracker.KindOf(err) {
	case tracker.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case tracker.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case tracker.KindConflict:
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into v. An empty body leaves v zero.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
