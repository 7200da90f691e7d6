package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

// CategoryResolver finds a category by exact name or stages a new one inside
// the caller's transaction. A staged category becomes durable only when that
// transaction commits; a concurrent creation of the same name is detected by
// the unique index at commit time.
type CategoryResolver struct {
	categories repository.CategoryRepository
}

// NewCategoryResolver creates a new CategoryResolver
func NewCategoryResolver(categories repository.CategoryRepository) *CategoryResolver {
	return &CategoryResolver{categories: categories}
}

// Resolve returns the existing category with the given name, or creates one
// through q. An existing category is returned unchanged. A blank name is a
// validation failure.
func (r *CategoryResolver) Resolve(ctx context.Context, q database.Querier, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)

	repo := r.categories
	if q != nil {
		repo = repo.WithQuerier(q)
	}

	category, err := repo.FindByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	category = domain.NewCategory(name)
	if verr := validateCategory(category); verr != nil {
		return nil, verr
	}

	if err := repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}
