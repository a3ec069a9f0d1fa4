package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/simplejira/internal/models"
)

const (
	seedJane     = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbb1"
	seedSoftware = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa1"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func createProject(t *testing.T, s *SQLiteStore, name, key string) *models.Project {
	t.Helper()
	p := &models.Project{Name: name, Key: key, Type: "Software", Avatar: key[:2]}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func createIssue(t *testing.T, s *SQLiteStore, projectID, title string, linked ...string) *models.Issue {
	t.Helper()
	issue := &models.Issue{ProjectID: projectID, Title: title, Summary: title, Status: models.IssueStatusTodo}
	require.NoError(t, s.CreateIssue(context.Background(), issue, linked))
	return issue
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestMigrate_SeedsReferenceData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Jane Product", users[0].Name)
	assert.Equal(t, "John Developer", users[1].Name)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"Business", "Service Desk", "Software"},
		[]string{categories[0].Name, categories[1].Name, categories[2].Name})
}

// --- Projects ---

func TestProjectCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.Project{
		Name:       "Alpha",
		Key:        "ALPHA",
		Type:       "Software",
		Avatar:     "AL",
		CategoryID: strPtr(seedSoftware),
		LeadID:     strPtr(seedJane),
	}
	require.NoError(t, s.CreateProject(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", got.Key)
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "Software", *got.CategoryName)
	require.NotNil(t, got.LeadName)
	assert.Equal(t, "Jane Product", *got.LeadName)

	exists, err := s.ProjectKeyExists(ctx, "ALPHA")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.ProjectKeyExists(ctx, "BETA")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetProject_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProject_DuplicateKeyConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createProject(t, s, "First", "DUP")
	err := s.CreateProject(ctx, &models.Project{Name: "Second", Key: "DUP", Type: "Software", Avatar: "DU"})
	assert.ErrorIs(t, err, ErrConflict)

	projects, err := s.ListProjects(ctx, ProjectFilter{Search: "dup"})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestListProjects_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	gamma := createProject(t, s, "Gamma Rays", "GR")
	alpha := &models.Project{Name: "alpha tools", Key: "AT", Type: "Software", Avatar: "AT", CategoryID: strPtr(seedSoftware)}
	require.NoError(t, s.CreateProject(ctx, alpha))
	beta := &models.Project{Name: "Beta", Key: "BGAM", Type: "Software", Avatar: "BG", CategoryID: strPtr(seedSoftware)}
	require.NoError(t, s.CreateProject(ctx, beta))

	all, err := s.ListProjects(ctx, ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Beta", "Gamma Rays", "alpha tools"}, []string{all[0].Name, all[1].Name, all[2].Name})

	// Matches name of one and key of another, case-insensitively.
	bySearch, err := s.ListProjects(ctx, ProjectFilter{Search: "GAM"})
	require.NoError(t, err)
	require.Len(t, bySearch, 2)
	assert.Equal(t, beta.ID, bySearch[0].ID)
	assert.Equal(t, gamma.ID, bySearch[1].ID)

	byCategory, err := s.ListProjects(ctx, ProjectFilter{CategoryID: seedSoftware})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	both, err := s.ListProjects(ctx, ProjectFilter{Search: "gam", CategoryID: seedSoftware})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, beta.ID, both[0].ID)

	// Wildcards are literal.
	none, err := s.ListProjects(ctx, ProjectFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListProjects_SearchFoldsUnicode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	eclair := createProject(t, s, "Éclair Team", "ÉCL")
	createProject(t, s, "Other", "OTH")

	for _, search := range []string{"Éclair", "éclair", "ÉCLAIR", "éCl", "team"} {
		t.Run(search, func(t *testing.T) {
			projects, err := s.ListProjects(ctx, ProjectFilter{Search: search})
			require.NoError(t, err)
			require.Len(t, projects, 1)
			assert.Equal(t, eclair.ID, projects[0].ID)
		})
	}
}

// --- Issues ---

func TestIssueCreateGetUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")

	points := 3
	issue := &models.Issue{
		ProjectID:   p.ID,
		Title:       "Bug",
		Summary:     "Broken",
		StoryPoints: &points,
		Status:      models.IssueStatusTodo,
		AssigneeID:  strPtr(seedJane),
	}
	require.NoError(t, s.CreateIssue(ctx, issue, nil))
	assert.NotEmpty(t, issue.ID)

	got, err := s.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bug", got.Title)
	require.NotNil(t, got.StoryPoints)
	assert.Equal(t, 3, *got.StoryPoints)
	require.NotNil(t, got.AssigneeName)
	assert.Equal(t, "Jane Product", *got.AssigneeName)
	assert.Nil(t, got.ReporterID)
	assert.Equal(t, 0, got.CommentCount)
	assert.Empty(t, got.LinkedIssueIDs)

	got.Title = "Bug (edited)"
	got.StoryPoints = nil
	require.NoError(t, s.UpdateIssue(ctx, got))
	require.NoError(t, s.UpdateIssueStatus(ctx, issue.ID, models.IssueStatusDone))
	require.NoError(t, s.UpdateIssueAssignee(ctx, issue.ID, nil))

	got, err = s.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bug (edited)", got.Title)
	assert.Nil(t, got.StoryPoints)
	assert.Equal(t, models.IssueStatusDone, got.Status)
	assert.Nil(t, got.AssigneeID)
}

func TestIssueUpdates_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetIssue(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateIssueStatus(ctx, "missing", models.IssueStatusDone), ErrNotFound)
	assert.ErrorIs(t, s.UpdateIssueAssignee(ctx, "missing", nil), ErrNotFound)
	assert.ErrorIs(t, s.UpdateIssue(ctx, &models.Issue{ID: "missing", Title: "x"}), ErrNotFound)
}

func TestCreateIssue_NegativeStoryPointsRejectedByStorage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")

	points := -1
	err := s.CreateIssue(ctx, &models.Issue{ProjectID: p.ID, Title: "Bug", Status: models.IssueStatusTodo, StoryPoints: &points}, nil)
	assert.Error(t, err)

	issues, err := s.ListIssues(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCreateIssue_LinksOutgoingOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")

	a := createIssue(t, s, p.ID, "A")
	b := createIssue(t, s, p.ID, "B", a.ID)

	gotB, err := s.GetIssue(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, gotB.LinkedIssueIDs)

	gotA, err := s.GetIssue(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gotA.LinkedIssueIDs)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, b.ID, links[0].IssueID)
	assert.Equal(t, a.ID, links[0].LinkedIssueID)
}

func TestCreateIssue_RollsBackOnBadLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")

	// Foreign key failure on the link aborts the issue insert too.
	err := s.CreateIssue(ctx, &models.Issue{ProjectID: p.ID, Title: "A", Status: models.IssueStatusTodo}, []string{"ghost"})
	require.Error(t, err)

	issues, err := s.ListIssues(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestListIssues_CreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")
	other := createProject(t, s, "Other", "OTHER")

	first := createIssue(t, s, p.ID, "zzz first")
	second := createIssue(t, s, p.ID, "aaa second")
	createIssue(t, s, other.ID, "elsewhere")

	issues, err := s.ListIssues(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, first.ID, issues[0].ID)
	assert.Equal(t, second.ID, issues[1].ID)

	all, err := s.ListIssues(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// --- Links ---

func TestLinkIssues_SymmetricAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")
	a := createIssue(t, s, p.ID, "A")
	b := createIssue(t, s, p.ID, "B")

	created, err := s.LinkIssues(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.LinkIssues(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = s.LinkIssues(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, created)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, a.ID, links[0].IssueID)
	assert.Equal(t, b.ID, links[0].LinkedIssueID)
	assert.Equal(t, b.ID, links[1].IssueID)
	assert.Equal(t, a.ID, links[1].LinkedIssueID)
}

func TestLinkIssues_SelfEdgeRejectedByStorage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")
	a := createIssue(t, s, p.ID, "A")

	_, err := s.LinkIssues(ctx, a.ID, a.ID)
	assert.Error(t, err)

	links, err := s.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

// --- Comments ---

func TestComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := createProject(t, s, "Alpha", "ALPHA")
	issue := createIssue(t, s, p.ID, "A")

	c1 := &models.Comment{IssueID: issue.ID, Body: "first", AuthorID: strPtr(seedJane)}
	require.NoError(t, s.CreateComment(ctx, c1))
	assert.False(t, c1.CreatedAt.IsZero())
	require.NoError(t, s.CreateComment(ctx, &models.Comment{IssueID: issue.ID, Body: "second"}))

	comments, err := s.ListComments(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	require.NotNil(t, comments[0].AuthorName)
	assert.Equal(t, "Jane Product", *comments[0].AuthorName)
	assert.Equal(t, "second", comments[1].Body)
	assert.Nil(t, comments[1].AuthorID)

	got, err := s.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
}

// --- Reference data ---

func TestReferenceData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.GetUser(ctx, seedJane)
	require.NoError(t, err)
	assert.Equal(t, "Jane Product", u.Name)

	_, err = s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetCategory(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.ImportReferenceData(ctx,
		[]*models.User{{ID: seedJane, Name: "Jane P."}, {ID: "u-3", Name: "Ada"}}, nil))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ada", users[0].Name)
	assert.Equal(t, "Jane P.", users[1].Name)

	c := &models.Category{Name: "Ops"}
	require.NoError(t, s.CreateCategory(ctx, c))
	assert.NotEmpty(t, c.ID)
	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ops", got.Name)

	fresh := &models.Category{Name: "Research"}
	require.NoError(t, s.ImportReferenceData(ctx, nil, []*models.Category{{ID: c.ID, Name: "Operations"}, fresh}))
	got, err = s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Operations", got.Name)
	assert.NotEmpty(t, fresh.ID)
}

func TestImportReferenceData_RollsBackOnFailedWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `CREATE TRIGGER reject_category BEFORE INSERT ON categories
		WHEN NEW.name = 'Rejected'
		BEGIN SELECT RAISE(ABORT, 'category rejected'); END`)
	require.NoError(t, err)

	before, err := s.ListCategories(ctx)
	require.NoError(t, err)

	err = s.ImportReferenceData(ctx,
		[]*models.User{{ID: "u-new", Name: "Ada"}, {ID: seedJane, Name: "Renamed"}},
		[]*models.Category{{ID: "cat-ok", Name: "Accepted"}, {ID: "cat-bad", Name: "Rejected"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category rejected")

	_, err = s.GetUser(ctx, "u-new")
	assert.ErrorIs(t, err, ErrNotFound)
	jane, err := s.GetUser(ctx, seedJane)
	require.NoError(t, err)
	assert.Equal(t, "Jane Product", jane.Name)
	_, err = s.GetCategory(ctx, "cat-ok")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
