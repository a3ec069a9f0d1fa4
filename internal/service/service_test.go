package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

const (
	janeID     = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbb1"
	johnID     = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbb2"
	softwareID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa1"
	businessID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaa2"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return New(s), s
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func requireKind(t *testing.T, err error, kind tracker.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, tracker.KindOf(err), "error %q", err)
	assert.Equal(t, msg, err.Error())
}

func mustProject(t *testing.T, svc *Service, name string) *tracker.ProjectView {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), tracker.CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return p
}

func mustIssue(t *testing.T, svc *Service, projectID, title string) *tracker.IssueView {
	t.Helper()
	i, err := svc.CreateIssue(context.Background(), projectID, tracker.CreateIssueRequest{Title: title})
	require.NoError(t, err)
	return i
}

// countingStore records reference lookups.
type countingStore struct {
	store.Store
	userLookups     int
	categoryLookups int
}

func (c *countingStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	c.userLookups++
	return c.Store.GetUser(ctx, id)
}

func (c *countingStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c.categoryLookups++
	return c.Store.GetCategory(ctx, id)
}

// --- Projects ---

func TestCreateProject_AlphaScenario(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateProject(context.Background(), tracker.CreateProjectRequest{
		Name: "Alpha Project",
		Key:  "alpha project",
	})
	require.NoError(t, err)
	assert.Equal(t, "ALPHAPROJE", p.Key)
	assert.Len(t, p.Key, 10)
	assert.Equal(t, "Software", p.Type)
	assert.Equal(t, "AL", p.Avatar)
	assert.Nil(t, p.Lead)
	assert.Nil(t, p.Category)
}

func TestCreateProject_KeyFromNameAndTrimming(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateProject(context.Background(), tracker.CreateProjectRequest{
		Name:   "  Platform Ops  ",
		Type:   " Business ",
		Avatar: " https://example.com/a.png ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform Ops", p.Name)
	assert.Equal(t, "PLATFORMOP", p.Key)
	assert.Equal(t, "Business", p.Type)
	assert.Equal(t, "https://example.com/a.png", p.Avatar)
}

func TestCreateProject_WithReferences(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreateProject(context.Background(), tracker.CreateProjectRequest{
		Name:       "Web",
		Key:        "WEB",
		LeadID:     strPtr(janeID),
		CategoryID: strPtr(softwareID),
	})
	require.NoError(t, err)
	require.NotNil(t, p.Lead)
	assert.Equal(t, tracker.Ref{ID: janeID, Name: "Jane Product"}, *p.Lead)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Software", p.Category.Name)

	got, err := svc.GetProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)
}

func TestCreateProject_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		req  tracker.CreateProjectRequest
		kind tracker.Kind
		msg  string
	}{
		{
			name: "blank name beats invalid key",
			req:  tracker.CreateProjectRequest{Name: " ", Key: "x", LeadID: strPtr("ghost")},
			kind: tracker.KindValidation,
			msg:  validate.MsgProjectNameRequired,
		},
		{
			name: "long name",
			req:  tracker.CreateProjectRequest{Name: strings.Repeat("n", 201)},
			kind: tracker.KindValidation,
			msg:  validate.MsgProjectNameTooLong,
		},
		{
			name: "lead resolved before key",
			req:  tracker.CreateProjectRequest{Name: "ok", Key: "x", LeadID: strPtr("ghost")},
			kind: tracker.KindNotFound,
			msg:  "Lead not found.",
		},
		{
			name: "category resolved before key",
			req:  tracker.CreateProjectRequest{Name: "ok", Key: "x", CategoryID: strPtr("ghost")},
			kind: tracker.KindNotFound,
			msg:  "Category not found.",
		},
		{
			name: "key too short",
			req:  tracker.CreateProjectRequest{Name: "ok", Key: "x", Type: strings.Repeat("t", 101)},
			kind: tracker.KindValidation,
			msg:  validate.MsgProjectKeyLength,
		},
		{
			name: "single letter name",
			req:  tracker.CreateProjectRequest{Name: "Q"},
			kind: tracker.KindValidation,
			msg:  validate.MsgProjectKeyLength,
		},
		{
			name: "type too long",
			req:  tracker.CreateProjectRequest{Name: "ok", Type: strings.Repeat("t", 101), Avatar: strings.Repeat("a", 501)},
			kind: tracker.KindValidation,
			msg:  validate.MsgProjectTypeTooLong,
		},
		{
			name: "avatar too long",
			req:  tracker.CreateProjectRequest{Name: "ok", Avatar: strings.Repeat("a", 501)},
			kind: tracker.KindValidation,
			msg:  validate.MsgAvatarTooLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.CreateProject(context.Background(), tt.req)
			requireKind(t, err, tt.kind, tt.msg)

			projects, err := svc.ListProjects(context.Background(), tracker.ProjectFilter{})
			require.NoError(t, err)
			assert.Empty(t, projects)
		})
	}
}

func TestCreateProject_KeyConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, tracker.CreateProjectRequest{Name: "First", Key: "ops"})
	require.NoError(t, err)

	// A different spelling that normalizes to the same key collides.
	_, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{Name: "Second", Key: "O.P.S", Type: strings.Repeat("t", 101)})
	requireKind(t, err, tracker.KindConflict, validate.MsgProjectKeyExists)

	projects, err := svc.ListProjects(ctx, tracker.ProjectFilter{Search: "OPS"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "First", projects[0].Name)
}

func TestCreateProject_IDResolution(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const supplied = "3f1c2a9e-8d4b-4c6a-9e2f-1a2b3c4d5e6f"
	p, err := svc.CreateProject(ctx, tracker.CreateProjectRequest{ID: supplied, Name: "With ID"})
	require.NoError(t, err)
	assert.Equal(t, supplied, p.ID)

	p, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{ID: "00000000-0000-0000-0000-000000000000", Name: "Nil ID"})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", p.ID)
	assert.Len(t, p.ID, 26)

	p, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{ID: "not-an-id", Name: "Bad ID"})
	require.NoError(t, err)
	assert.NotEqual(t, "not-an-id", p.ID)

	_, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{ID: supplied, Name: "Reused ID"})
	requireKind(t, err, tracker.KindConflict, "Project id already exists.")
}

func TestCreateProject_OmittedReferencesSkipLookup(t *testing.T) {
	_, st := newTestService(t)
	counting := &countingStore{Store: st}
	svc := New(counting)

	_, err := svc.CreateProject(context.Background(), tracker.CreateProjectRequest{Name: "Quiet"})
	require.NoError(t, err)
	assert.Zero(t, counting.userLookups)
	assert.Zero(t, counting.categoryLookups)
}

func TestListProjects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, tracker.CreateProjectRequest{Name: "Zeta", Key: "ZT", CategoryID: strPtr(businessID)})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{Name: "Apollo", Key: "ZAP", CategoryID: strPtr(softwareID)})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, tracker.CreateProjectRequest{Name: "Mercury", Key: "MC", CategoryID: strPtr(softwareID)})
	require.NoError(t, err)

	all, err := svc.ListProjects(ctx, tracker.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Apollo", all[0].Name)
	assert.Equal(t, "Mercury", all[1].Name)
	assert.Equal(t, "Zeta", all[2].Name)

	z, err := svc.ListProjects(ctx, tracker.ProjectFilter{Search: " z "})
	require.NoError(t, err)
	assert.Len(t, z, 2, "matches Zeta by name and Apollo by key")

	zSoftware, err := svc.ListProjects(ctx, tracker.ProjectFilter{Search: "z", CategoryID: softwareID})
	require.NoError(t, err)
	require.Len(t, zSoftware, 1)
	assert.Equal(t, "Apollo", zSoftware[0].Name)
}

func TestGetProject_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetProject(context.Background(), "missing")
	requireKind(t, err, tracker.KindNotFound, "Project not found.")
}

// --- Issues ---

func TestCreateIssue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")

	issue, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{
		Title:       "  Login fails  ",
		StoryPoints: intPtr(5),
		AssigneeID:  strPtr(janeID),
		ReporterID:  strPtr(johnID),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, issue.ProjectID)
	assert.Equal(t, "Login fails", issue.Title)
	assert.Equal(t, "Login fails", issue.Summary, "summary defaults to title")
	assert.Equal(t, models.IssueStatusTodo, issue.Status)
	require.NotNil(t, issue.StoryPoints)
	assert.Equal(t, 5, *issue.StoryPoints)
	assert.Equal(t, &tracker.Ref{ID: janeID, Name: "Jane Product"}, issue.Assignee)
	assert.Equal(t, &tracker.Ref{ID: johnID, Name: "John Developer"}, issue.Reporter)
	assert.Equal(t, 0, issue.CommentsCount)
	assert.Equal(t, []string{}, issue.LinkedIssueIDs)
}

func TestCreateIssue_NegativeStoryPoints(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")

	_, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{Title: "Bug", StoryPoints: intPtr(-1)})
	requireKind(t, err, tracker.KindValidation, "Story points cannot be negative.")

	issues, err := svc.ListIssues(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCreateIssue_Failures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")

	_, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{Title: ""})
	requireKind(t, err, tracker.KindValidation, validate.MsgTitleRequired)

	_, err = svc.CreateIssue(ctx, "missing", tracker.CreateIssueRequest{Title: "Bug"})
	requireKind(t, err, tracker.KindNotFound, "Project not found.")

	_, err = svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{Title: "Bug", AssigneeID: strPtr("ghost"), ReporterID: strPtr("ghost")})
	requireKind(t, err, tracker.KindNotFound, "Assignee not found.")

	_, err = svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{Title: "Bug", ReporterID: strPtr("ghost")})
	requireKind(t, err, tracker.KindNotFound, "Reporter not found.")

	issues, err := svc.ListIssues(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCreateIssue_LinkedIDsSkipPolicy(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	a := mustIssue(t, svc, p.ID, "A")

	b, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{
		Title:          "B",
		LinkedIssueIDs: []string{a.ID, "ghost", a.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, b.LinkedIssueIDs)

	gotA, err := svc.GetIssue(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gotA.LinkedIssueIDs)

	links, err := st.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, b.ID, links[0].IssueID)
	assert.Equal(t, a.ID, links[0].LinkedIssueID)

	// A later Link of the same pair finds the existing edge and adds nothing.
	require.NoError(t, svc.Link(ctx, a.ID, b.ID))
	links, err = st.ListLinks(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestUpdateStatus_OnlyStatusChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	issue, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{
		Title:       "Bug",
		Summary:     "Details",
		StoryPoints: intPtr(2),
		AssigneeID:  strPtr(janeID),
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, issue.ID, models.IssueStatusInProgress))

	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusInProgress, got.Status)

	want := *issue
	want.Status = models.IssueStatusInProgress
	assert.Equal(t, want, *got)
}

func TestUpdateStatus_AnyToAny(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	issue := mustIssue(t, svc, p.ID, "Bug")

	for _, s := range []models.IssueStatus{models.IssueStatusDone, models.IssueStatusTodo, models.IssueStatusDone, models.IssueStatusInProgress} {
		require.NoError(t, svc.UpdateStatus(ctx, issue.ID, s))
		got, err := svc.GetIssue(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}

	requireKind(t, svc.UpdateStatus(ctx, issue.ID, "Closed"), tracker.KindValidation, validate.MsgInvalidStatus)
	requireKind(t, svc.UpdateStatus(ctx, "missing", models.IssueStatusDone), tracker.KindNotFound, "Issue not found.")
}

func TestAssignIssue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	issue := mustIssue(t, svc, p.ID, "Bug")

	require.NoError(t, svc.AssignIssue(ctx, issue.ID, strPtr(johnID)))
	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, &tracker.Ref{ID: johnID, Name: "John Developer"}, got.Assignee)

	requireKind(t, svc.AssignIssue(ctx, issue.ID, strPtr("ghost")), tracker.KindNotFound, "Assignee not found.")
	got, err = svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, johnID, got.Assignee.ID, "failed assignment leaves the old assignee")

	require.NoError(t, svc.AssignIssue(ctx, issue.ID, nil))
	got, err = svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Assignee)

	requireKind(t, svc.AssignIssue(ctx, "missing", nil), tracker.KindNotFound, "Issue not found.")
}

func TestUpdateIssue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	a := mustIssue(t, svc, p.ID, "A")
	issue, err := svc.CreateIssue(ctx, p.ID, tracker.CreateIssueRequest{
		Title:          "Old",
		Summary:        "Old summary",
		StoryPoints:    intPtr(8),
		AssigneeID:     strPtr(janeID),
		LinkedIssueIDs: []string{a.ID},
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, issue.ID, models.IssueStatusDone))

	requireKind(t, svc.UpdateIssue(ctx, "missing", tracker.UpdateIssueRequest{Title: ""}), tracker.KindNotFound, "Issue not found.")
	requireKind(t, svc.UpdateIssue(ctx, issue.ID, tracker.UpdateIssueRequest{Title: " "}), tracker.KindValidation, validate.MsgTitleRequired)
	requireKind(t, svc.UpdateIssue(ctx, issue.ID, tracker.UpdateIssueRequest{Title: "New", StoryPoints: intPtr(-3)}), tracker.KindValidation, validate.MsgNegativePoints)

	require.NoError(t, svc.UpdateIssue(ctx, issue.ID, tracker.UpdateIssueRequest{Title: " New "}))

	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "New", got.Summary)
	assert.Nil(t, got.StoryPoints)
	assert.Equal(t, models.IssueStatusDone, got.Status)
	assert.Equal(t, janeID, got.Assignee.ID)
	assert.Equal(t, []string{a.ID}, got.LinkedIssueIDs)
}

func TestListIssues_ProjectNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListIssues(context.Background(), "missing")
	requireKind(t, err, tracker.KindNotFound, "Project not found.")
}

// --- Links ---

func TestLink_TwiceThenReverseYieldsTwoEdges(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	a := mustIssue(t, svc, p.ID, "A")
	b := mustIssue(t, svc, p.ID, "B")

	require.NoError(t, svc.Link(ctx, a.ID, b.ID))
	require.NoError(t, svc.Link(ctx, a.ID, b.ID))
	require.NoError(t, svc.Link(ctx, b.ID, a.ID))

	links, err := st.ListLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	pairs := map[[2]string]bool{}
	for _, l := range links {
		pairs[[2]string{l.IssueID, l.LinkedIssueID}] = true
	}
	assert.True(t, pairs[[2]string{a.ID, b.ID}])
	assert.True(t, pairs[[2]string{b.ID, a.ID}])

	gotA, err := svc.GetIssue(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, gotA.LinkedIssueIDs)
	gotB, err := svc.GetIssue(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, gotB.LinkedIssueIDs)
}

func TestLink_Failures(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	a := mustIssue(t, svc, p.ID, "A")

	requireKind(t, svc.Link(ctx, a.ID, a.ID), tracker.KindValidation, "Cannot link an issue to itself.")
	requireKind(t, svc.Link(ctx, "ghost", "ghost"), tracker.KindValidation, "Cannot link an issue to itself.")
	requireKind(t, svc.Link(ctx, "ghost", a.ID), tracker.KindNotFound, "Issue not found.")
	requireKind(t, svc.Link(ctx, a.ID, "ghost"), tracker.KindNotFound, "Target issue not found.")

	links, err := st.ListLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

// --- Comments ---

func TestAddComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	issue := mustIssue(t, svc, p.ID, "Bug")

	c, err := svc.AddComment(ctx, issue.ID, tracker.AddCommentRequest{Body: "  looks good  ", AuthorID: strPtr(janeID)})
	require.NoError(t, err)
	assert.Equal(t, "looks good", c.Body)
	assert.Equal(t, issue.ID, c.IssueID)
	assert.Equal(t, &tracker.Ref{ID: janeID, Name: "Jane Product"}, c.Author)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = svc.AddComment(ctx, issue.ID, tracker.AddCommentRequest{Body: "anonymous"})
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "looks good", comments[0].Body)
	assert.Nil(t, comments[1].Author)

	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
}

func TestAddComment_Failures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustProject(t, svc, "Alpha")
	issue := mustIssue(t, svc, p.ID, "Bug")

	_, err := svc.AddComment(ctx, issue.ID, tracker.AddCommentRequest{Body: "   "})
	requireKind(t, err, tracker.KindValidation, "Comment body is required.")

	_, err = svc.AddComment(ctx, "missing", tracker.AddCommentRequest{Body: ""})
	requireKind(t, err, tracker.KindValidation, "Comment body is required.")

	_, err = svc.AddComment(ctx, "missing", tracker.AddCommentRequest{Body: "hi"})
	requireKind(t, err, tracker.KindNotFound, "Issue not found.")

	_, err = svc.AddComment(ctx, issue.ID, tracker.AddCommentRequest{Body: "hi", AuthorID: strPtr("ghost")})
	requireKind(t, err, tracker.KindNotFound, "Author not found.")

	comments, err := svc.ListComments(ctx, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

// --- Reference data ---

func TestReferenceData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tracker.Ref{{ID: janeID, Name: "Jane Product"}, {ID: johnID, Name: "John Developer"}}, users)

	_, err = svc.CreateCategory(ctx, "  ")
	requireKind(t, err, tracker.KindValidation, validate.MsgCategoryRequired)

	c, err := svc.CreateCategory(ctx, "  Infrastructure ")
	require.NoError(t, err)
	assert.Equal(t, "Infrastructure", c.Name)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 4)
	assert.Equal(t, "Business", categories[0].Name)
	assert.Equal(t, "Infrastructure", categories[1].Name)
}

func TestImportReferenceData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ImportReferenceData(ctx,
		[]tracker.Ref{{ID: janeID, Name: "Jane Q. Product"}, {Name: "Ada Lovelace"}},
		[]tracker.Ref{{ID: "cat-ops", Name: "Ops"}},
	)
	require.NoError(t, err)

	// Running the same import again changes nothing.
	err = svc.ImportReferenceData(ctx, nil, []tracker.Ref{{ID: "cat-ops", Name: "Ops"}})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ada Lovelace", users[0].Name)
	assert.Equal(t, "Jane Q. Product", users[1].Name)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)

	err = svc.ImportReferenceData(ctx, []tracker.Ref{{ID: "u-x", Name: "Valid"}, {ID: "u-y", Name: " "}}, nil)
	requireKind(t, err, tracker.KindValidation, validate.MsgUsernameRequired)
	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3, "nothing written when any entry is invalid")
}
