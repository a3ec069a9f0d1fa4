package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/joescharf/simplejira/internal/models"

	"modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite's lower() folds ASCII only; fold() applies Unicode lower-casing so
// it matches strings.ToLower on the Go side.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// SQLiteStore implements Store using sqlx over modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes every statement, so concurrent requests
	// queue instead of failing with "database is locked".
	db.SetMaxOpenConns(1)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "enable WAL mode"},
		{"PRAGMA busy_timeout=5000", "set busy timeout"},
		{"PRAGMA foreign_keys=ON", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p.what, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// NewID generates a new ULID string.
func NewID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Projects ---

const projectSelect = `SELECT p.id, p.name, p."key", p.type, p.avatar, p.category_id, p.lead_id, p.created_at,
	c.name AS category_name, u.name AS lead_name
	FROM projects p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN users u ON u.id = p.lead_id`

func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO projects (id, name, "key", type, avatar, category_id, lead_id, created_at)
		VALUES (:id, :name, :key, :type, :avatar, :category_id, :lead_id, :created_at)`, p)
	if isUniqueViolation(err) {
		return fmt.Errorf("create project %s: %w", p.Key, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	p := &models.Project{}
	err := s.db.GetContext(ctx, p, projectSelect+` WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ProjectKeyExists(ctx context.Context, key string) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects WHERE "key" = ?`, key); err != nil {
		return false, fmt.Errorf("check project key: %w", err)
	}
	return count > 0, nil
}

// ListProjects matches Search as a case-insensitive literal substring of the
// name or key, and CategoryID exactly. Results are ordered by name.
func (s *SQLiteStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query := projectSelect
	var conditions []string
	var args []any

	if search := strings.TrimSpace(filter.Search); search != "" {
		needle := strings.ToLower(search)
		conditions = append(conditions, `(instr(fold(p.name), ?) > 0 OR instr(fold(p."key"), ?) > 0)`)
		args = append(args, needle, needle)
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.name, p.id"

	var projects []*models.Project
	if err := s.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// --- Issues ---

const issueSelect = `SELECT i.id, i.project_id, i.title, i.summary, i.story_points, i.status,
	i.assignee_id, i.reporter_id, i.created_at, i.updated_at,
	a.name AS assignee_name, r.name AS reporter_name,
	(SELECT COUNT(*) FROM comments c WHERE c.issue_id = i.id) AS comment_count
	FROM issues i
	LEFT JOIN users a ON a.id = i.assignee_id
	LEFT JOIN users r ON r.id = i.reporter_id`

// CreateIssue inserts the issue and one outgoing link row (new -> linked) for
// each linked issue id in one transaction. Linked ids must already exist.
func (s *SQLiteStore) CreateIssue(ctx context.Context, issue *models.Issue, linkedIssueIDs []string) error {
	if issue.ID == "" {
		issue.ID = NewID()
	}
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create issue: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO issues (id, project_id, title, summary, story_points, status, assignee_id, reporter_id, created_at, updated_at)
		VALUES (:id, :project_id, :title, :summary, :story_points, :status, :assignee_id, :reporter_id, :created_at, :updated_at)`, issue)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	for _, linkedID := range linkedIssueIDs {
		if linkedID == issue.ID {
			continue
		}
		if _, err := insertLink(ctx, tx, issue.ID, linkedID); err != nil {
			return fmt.Errorf("create issue link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create issue: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	issue := &models.Issue{}
	err := s.db.GetContext(ctx, issue, issueSelect+` WHERE i.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("issue", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	if err := s.loadLinks(ctx, []*models.Issue{issue}); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *SQLiteStore) IssueExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM issues WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("check issue: %w", err)
	}
	return count > 0, nil
}

// ListIssues returns the issues of one project in creation order. An empty
// projectID lists every issue.
func (s *SQLiteStore) ListIssues(ctx context.Context, projectID string) ([]*models.Issue, error) {
	query := issueSelect
	var args []any
	if projectID != "" {
		query += " WHERE i.project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY i.rowid"

	var issues []*models.Issue
	if err := s.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	if err := s.loadLinks(ctx, issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// loadLinks fills LinkedIssueIDs on each issue from its outgoing edges.
func (s *SQLiteStore) loadLinks(ctx context.Context, issues []*models.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	ids := make([]string, len(issues))
	byID := make(map[string]*models.Issue, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
		byID[issue.ID] = issue
		issue.LinkedIssueIDs = []string{}
	}

	query, args, err := sqlx.In(`SELECT id, issue_id, linked_issue_id FROM issue_links WHERE issue_id IN (?) ORDER BY rowid`, ids)
	if err != nil {
		return fmt.Errorf("build link query: %w", err)
	}
	var links []*models.IssueLink
	if err := s.db.SelectContext(ctx, &links, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load issue links: %w", err)
	}
	for _, l := range links {
		if issue, ok := byID[l.IssueID]; ok {
			issue.LinkedIssueIDs = append(issue.LinkedIssueIDs, l.LinkedIssueID)
		}
	}
	return nil
}

// UpdateIssue overwrites title, summary and story points.
func (s *SQLiteStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now().UTC()
	result, err := s.db.NamedExecContext(ctx,
		`UPDATE issues SET title = :title, summary = :summary, story_points = :story_points, updated_at = :updated_at
		WHERE id = :id`, issue)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	return expectOneRow(result, "issue", issue.ID)
}

func (s *SQLiteStore) UpdateIssueStatus(ctx context.Context, id string, status models.IssueStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE issues SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update issue status: %w", err)
	}
	return expectOneRow(result, "issue", id)
}

func (s *SQLiteStore) UpdateIssueAssignee(ctx context.Context, id string, assigneeID *string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE issues SET assignee_id = ?, updated_at = ? WHERE id = ?`, assigneeID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update issue assignee: %w", err)
	}
	return expectOneRow(result, "issue", id)
}

func expectOneRow(result sql.Result, what, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}

// --- Links ---

// LinkIssues records the relation between two issues as a pair of edges.
// It reports false without writing when an edge already exists in either
// direction.
func (s *SQLiteStore) LinkIssues(ctx context.Context, issueID, linkedIssueID string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin link issues: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM issue_links
		WHERE (issue_id = ? AND linked_issue_id = ?) OR (issue_id = ? AND linked_issue_id = ?)`,
		issueID, linkedIssueID, linkedIssueID, issueID)
	if err != nil {
		return false, fmt.Errorf("check issue link: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	created, err := insertLinkPair(ctx, tx, issueID, linkedIssueID)
	if err != nil {
		return false, fmt.Errorf("link issues: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit link issues: %w", err)
	}
	return created, nil
}

// insertLinkPair writes a->b and b->a. A pair that already exists is left
// as is.
func insertLinkPair(ctx context.Context, tx *sqlx.Tx, a, b string) (bool, error) {
	forward, err := insertLink(ctx, tx, a, b)
	if err != nil {
		return false, err
	}
	backward, err := insertLink(ctx, tx, b, a)
	if err != nil {
		return false, err
	}
	return forward || backward, nil
}

// insertLink writes the single edge from -> to, reporting whether a row was
// added.
func insertLink(ctx context.Context, tx *sqlx.Tx, from, to string) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO issue_links (id, issue_id, linked_issue_id) VALUES (?, ?, ?)
		ON CONFLICT (issue_id, linked_issue_id) DO NOTHING`,
		NewID(), from, to)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ListLinks returns every stored edge in insertion order.
func (s *SQLiteStore) ListLinks(ctx context.Context) ([]*models.IssueLink, error) {
	var links []*models.IssueLink
	if err := s.db.SelectContext(ctx, &links, `SELECT id, issue_id, linked_issue_id FROM issue_links ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("list issue links: %w", err)
	}
	return links, nil
}

// --- Comments ---

func (s *SQLiteStore) CreateComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO comments (id, issue_id, body, author_id, created_at)
		VALUES (:id, :issue_id, :body, :author_id, :created_at)`, c)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns the comments on an issue in creation order.
func (s *SQLiteStore) ListComments(ctx context.Context, issueID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.db.SelectContext(ctx, &comments,
		`SELECT c.id, c.issue_id, c.body, c.author_id, c.created_at, u.name AS author_name
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.issue_id = ?
		ORDER BY c.rowid`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// --- Reference data ---

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	err := s.db.GetContext(ctx, u, "SELECT id, name FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.SelectContext(ctx, &users, "SELECT id, name FROM users ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.GetContext(ctx, c, "SELECT id, name FROM categories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := s.db.SelectContext(ctx, &categories, "SELECT id, name FROM categories ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO categories (id, name) VALUES (:id, :name)`, c)
	if isUniqueViolation(err) {
		return fmt.Errorf("create category %s: %w", c.ID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ImportReferenceData inserts users and categories, renaming existing rows
// with the same id, in one transaction. Entries without an id get a new one.
func (s *SQLiteStore) ImportReferenceData(ctx context.Context, users []*models.User, categories []*models.Category) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import reference data: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		if u.ID == "" {
			u.ID = NewID()
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO users (id, name) VALUES (:id, :name)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`, u)
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", u.ID, err)
		}
	}
	for _, c := range categories {
		if c.ID == "" {
			c.ID = NewID()
		}
		_, err := tx.NamedExecContext(ctx,
			`INSERT INTO categories (id, name) VALUES (:id, :name)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import reference data: %w", err)
	}
	return nil
}
