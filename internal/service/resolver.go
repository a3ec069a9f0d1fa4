package service

import (
	"context"
	"errors"
	"strings"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Roles name the reference being resolved in not-found messages.
const (
	RoleAssignee = "Assignee"
	RoleReporter = "Reporter"
	RoleAuthor   = "Author"
	RoleLead     = "Lead"
	RoleCategory = "Category"
)

// Resolver looks up optional references. An omitted id resolves to nil
// without touching the store; a supplied id that does not exist fails with
// "<Role> not found.".
type Resolver struct {
	store store.Store
}

// NewResolver returns a Resolver over st.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

func omitted(id *string) bool {
	return id == nil || strings.TrimSpace(*id) == ""
}

func missing(role string) error {
	return tracker.NotFound(role + " not found.")
}

// User resolves a user reference for the given role.
func (r *Resolver) User(ctx context.Context, role string, id *string) (*models.User, error) {
	if omitted(id) {
		return nil, nil
	}
	u, err := r.store.GetUser(ctx, strings.TrimSpace(*id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, missing(role)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Category resolves a category reference.
func (r *Resolver) Category(ctx context.Context, id *string) (*models.Category, error) {
	if omitted(id) {
		return nil, nil
	}
	c, err := r.store.GetCategory(ctx, strings.TrimSpace(*id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, missing(RoleCategory)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LinkedIssues resolves linked issue ids with the skip policy: duplicates
// collapse to their first occurrence and unknown ids are dropped.
func (r *Resolver) LinkedIssues(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	var resolved []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		ok, err := r.store.IssueExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			resolved = append(resolved, id)
		}
	}
	return resolved, nil
}
