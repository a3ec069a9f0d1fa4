package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/simplejira/internal/service"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
)

const sample = `{
  // team
  "users": [
    {"id": "u-ann", "name": "Ann Analyst"},
    {"id": "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbb2", "name": "John Dev"},
  ],
  /* categories */
  "categories": [{"name": "Marketing"},],
}`

func newService(t *testing.T) *service.Service {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return service.New(s)
}

func TestParse(t *testing.T) {
	d, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, d.Users, 2)
	assert.Equal(t, tracker.Ref{ID: "u-ann", Name: "Ann Analyst"}, d.Users[0])
	require.Len(t, d.Categories, 1)
	assert.Empty(t, d.Categories[0].ID)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"users": [`))
	assert.Error(t, err)
}

func TestLoadFileAndApply(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	path := filepath.Join(t.TempDir(), "seed.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	d, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, svc, d))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	assert.Equal(t, []string{"Ann Analyst", "Jane Product", "John Dev"}, names)

	// Re-applying by id does not duplicate users.
	require.NoError(t, Apply(ctx, svc, &Data{Users: d.Users}))
	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestApply_RejectsBlankNamesWithoutWriting(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := Apply(ctx, svc, &Data{
		Users:      []tracker.Ref{{ID: "u-ok", Name: "Okay"}},
		Categories: []tracker.Ref{{Name: " "}},
	})
	require.Error(t, err)
	assert.True(t, tracker.IsValidation(err))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.jsonc"))
	assert.Error(t, err)
}
