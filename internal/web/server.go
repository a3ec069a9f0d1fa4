// Package web is the server-rendered browser client. It never touches the
// store: every page is built from tracker calls made as the browser's own
// API session.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/joescharf/simplejira/internal/client"
	"github.com/joescharf/simplejira/internal/tracker"
)

const sessionCookie = "sj_session"

// Backend returns the tracker to use for one browser session.
type Backend func(session client.Session) tracker.Tracker

// LoginFunc exchanges a display name for an API session.
type LoginFunc func(ctx context.Context, username string) (client.Session, error)

// Options configures a Server.
type Options struct {
	Backend       Backend
	Login         LoginFunc
	Logger        *slog.Logger
	SecureCookies bool
}

// Remote returns Options that reach the REST API at apiURL.
func Remote(apiURL string, httpClient *http.Client) Options {
	return Options{
		Backend: func(session client.Session) tracker.Tracker {
			return client.New(apiURL, session, httpClient)
		},
		Login: func(ctx context.Context, username string) (client.Session, error) {
			return client.Login(ctx, apiURL, username, httpClient)
		},
	}
}

// Server renders the web UI.
type Server struct {
	backend  Backend
	login    LoginFunc
	logger   *slog.Logger
	secure   bool
	sessions *sessionTable
	pages    map[string]*template.Template
	static   http.Handler
}

// New parses the embedded templates and returns a Server.
func New(opts Options) (*Server, error) {
	if opts.Backend == nil || opts.Login == nil {
		return nil, errors.New("web: backend and login are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	funcs := template.FuncMap{"markdown": renderMarkdown}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login", "projects", "board", "issue", "users"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}

	static, err := staticHandler()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	return &Server{
		backend:  opts.Backend,
		login:    opts.Login,
		logger:   logger,
		secure:   opts.SecureCookies,
		sessions: newSessionTable(),
		pages:    pages,
		static:   static,
	}, nil
}

// Handler returns the routes of the web UI.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", s.static)
	mux.HandleFunc("GET /login", s.loginPage)
	mux.HandleFunc("POST /login", s.loginSubmit)
	mux.HandleFunc("POST /logout", s.logout)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /projects", s.withSession(s.projectsPage))
	mux.HandleFunc("POST /projects", s.withSession(s.createProject))
	mux.HandleFunc("GET /projects/{id}", s.withSession(s.boardPage))
	mux.HandleFunc("POST /projects/{id}/issues", s.withSession(s.createIssue))
	mux.HandleFunc("GET /issues/{id}", s.withSession(s.issuePage))
	mux.HandleFunc("POST /issues/{id}", s.withSession(s.updateIssue))
	mux.HandleFunc("POST /issues/{id}/status", s.withSession(s.updateStatus))
	mux.HandleFunc("POST /issues/{id}/assignee", s.withSession(s.assignIssue))
	mux.HandleFunc("POST /issues/{id}/links", s.withSession(s.linkIssue))
	mux.HandleFunc("POST /issues/{id}/comments", s.withSession(s.addComment))
	mux.HandleFunc("GET /users", s.withSession(s.usersPage))

	return mux
}

// request carries what a session handler needs.
type request struct {
	sessionID string
	session   client.Session
	tracker   tracker.Tracker
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, req request)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		session, ok := s.sessions.get(cookie.Value)
		if !ok || session.Expired(time.Now()) {
			s.sessions.delete(cookie.Value)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r, request{sessionID: cookie.Value, session: session, tracker: s.backend(session)})
	}
}

type page struct {
	Title string
	User  string
	Error string
	Data  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, user string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	p := page{Title: title, User: user, Error: r.URL.Query().Get("error"), Data: data}
	if err := s.pages[name].ExecuteTemplate(w, "layout", p); err != nil {
		s.logger.Error("render page", "page", name, "error", err)
	}
}

// redirectWithError sends the browser back to target with msg shown.
func redirectWithError(w http.ResponseWriter, r *http.Request, target, msg string) {
	if msg != "" {
		target += "?error=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fail handles an error from a tracker call. Rule violations go back to
// target as a flash message; an expired session goes to the login page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, req request, target string, err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		s.sessions.delete(req.sessionID)
		redirectWithError(w, r, "/login", "Your session has expired.")
	case tracker.KindOf(err) != 0:
		redirectWithError(w, r, target, err.Error())
	default:
		s.logger.Error("web request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
