package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

const (
	defaultProjectType = "Software"
	avatarKeyRunes     = 2

	msgProjectNotFound = "Project not found."
	msgProjectIDExists = "Project id already exists."
)

// CreateProject runs the project rules in order: name, lead, category, key,
// key uniqueness, type, avatar. The first failure wins and nothing is stored.
func (s *Service) CreateProject(ctx context.Context, req tracker.CreateProjectRequest) (*tracker.ProjectView, error) {
	if err := validate.ProjectName(req.Name); err != nil {
		return nil, err
	}

	lead, err := s.resolver.User(ctx, RoleLead, req.LeadID)
	if err != nil {
		return nil, err
	}
	category, err := s.resolver.Category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	keySource := req.Key
	if strings.TrimSpace(keySource) == "" {
		keySource = req.Name
	}
	key := validate.NormalizeKey(keySource)
	if err := validate.ProjectKey(key); err != nil {
		return nil, err
	}

	exists, err := s.store.ProjectKeyExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, tracker.Conflict(validate.MsgProjectKeyExists)
	}

	if err := validate.ProjectType(req.Type); err != nil {
		return nil, err
	}
	if err := validate.Avatar(req.Avatar); err != nil {
		return nil, err
	}

	p := &models.Project{
		ID:     resolveProjectID(req.ID),
		Name:   strings.TrimSpace(req.Name),
		Key:    key,
		Type:   strings.TrimSpace(req.Type),
		Avatar: strings.TrimSpace(req.Avatar),
	}
	if p.Type == "" {
		p.Type = defaultProjectType
	}
	if p.Avatar == "" {
		p.Avatar = string([]rune(key)[:min(len([]rune(key)), avatarKeyRunes)])
	}
	if lead != nil {
		p.LeadID, p.LeadName = &lead.ID, &lead.Name
	}
	if category != nil {
		p.CategoryID, p.CategoryName = &category.ID, &category.Name
	}

	if err := s.store.CreateProject(ctx, p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, s.projectConflict(ctx, key)
		}
		return nil, err
	}

	view := projectView(p)
	return &view, nil
}

// projectConflict tells a lost race on the key apart from a reused id.
func (s *Service) projectConflict(ctx context.Context, key string) error {
	exists, err := s.store.ProjectKeyExists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return tracker.Conflict(validate.MsgProjectKeyExists)
	}
	return tracker.Conflict(msgProjectIDExists)
}

// resolveProjectID honors a caller-supplied UUID or ULID that is not the zero
// value, and generates a new ULID otherwise.
func resolveProjectID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.NewID()
	}
	if u, err := uuid.Parse(id); err == nil && u != uuid.Nil {
		return u.String()
	}
	if u, err := ulid.ParseStrict(id); err == nil && u.Compare(ulid.ULID{}) != 0 {
		return u.String()
	}
	return store.NewID()
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id string) (*tracker.ProjectView, error) {
	p, err := s.store.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tracker.NotFound(msgProjectNotFound)
	}
	if err != nil {
		return nil, err
	}
	view := projectView(p)
	return &view, nil
}

// ListProjects returns projects matching the filter, ordered by name.
func (s *Service) ListProjects(ctx context.Context, filter tracker.ProjectFilter) ([]tracker.ProjectView, error) {
	projects, err := s.store.ListProjects(ctx, store.ProjectFilter{
		Search:     filter.Search,
		CategoryID: strings.TrimSpace(filter.CategoryID),
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	views := make([]tracker.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, projectView(p))
	}
	return views, nil
}
