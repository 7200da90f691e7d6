package service

import (
	"context"
	"fmt"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

// ListCategories retrieves all categories
func (s *categoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
