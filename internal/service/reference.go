package service

import (
	"context"
	"strings"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

// ListUsers returns every user ordered by name.
func (s *Service) ListUsers(ctx context.Context) ([]tracker.Ref, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]tracker.Ref, 0, len(users))
	for _, u := range users {
		refs = append(refs, tracker.Ref{ID: u.ID, Name: u.Name})
	}
	return refs, nil
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]tracker.Ref, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]tracker.Ref, 0, len(categories))
	for _, c := range categories {
		refs = append(refs, tracker.Ref{ID: c.ID, Name: c.Name})
	}
	return refs, nil
}

// CreateCategory adds a category with a trimmed name.
func (s *Service) CreateCategory(ctx context.Context, name string) (*tracker.Ref, error) {
	if err := validate.CategoryName(name); err != nil {
		return nil, err
	}
	c := &models.Category{Name: strings.TrimSpace(name)}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return &tracker.Ref{ID: c.ID, Name: c.Name}, nil
}

// ImportReferenceData upserts users and categories by id as one write.
// Entries without an id get a new one; entries with a blank name are
// rejected before any write.
func (s *Service) ImportReferenceData(ctx context.Context, users, categories []tracker.Ref) error {
	for _, u := range users {
		if err := validate.Username(u.Name); err != nil {
			return err
		}
	}
	for _, c := range categories {
		if err := validate.CategoryName(c.Name); err != nil {
			return err
		}
	}

	batchUsers := make([]*models.User, 0, len(users))
	for _, u := range users {
		batchUsers = append(batchUsers, &models.User{ID: strings.TrimSpace(u.ID), Name: strings.TrimSpace(u.Name)})
	}
	batchCategories := make([]*models.Category, 0, len(categories))
	for _, c := range categories {
		batchCategories = append(batchCategories, &models.Category{ID: strings.TrimSpace(c.ID), Name: strings.TrimSpace(c.Name)})
	}
	return s.store.ImportReferenceData(ctx, batchUsers, batchCategories)
}
