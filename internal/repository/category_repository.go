package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// WithQuerier returns a copy of the repository bound to q, typically a
	// transaction obtained from database.TxRunner.
	WithQuerier(q database.Querier) CategoryRepository
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
}

type categoryRepository struct {
	q database.Querier
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(q database.Querier) CategoryRepository {
	return &categoryRepository{q: q}
}

func (r *categoryRepository) WithQuerier(q database.Querier) CategoryRepository {
	return &categoryRepository{q: q}
}

// Create inserts a new category and fills in its generated ID. A duplicate
// name surfaces as ErrCategoryNameTaken.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.q.QueryRowContext(
		ctx,
		query,
		category.Name,
		category.CreatedAt,
	).Scan(&category.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryNameTaken
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories, newest first
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, created_at, modified_at
		FROM categories
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.CreatedAt,
			&category.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
		SELECT id, name, created_at, modified_at
		FROM categories
		WHERE id = $1
	`

	category := &domain.Category{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
		&category.ModifiedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindByName retrieves a category by its exact name
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `
		SELECT id, name, created_at, modified_at
		FROM categories
		WHERE name = $1
	`

	category := &domain.Category{}
	err := r.q.QueryRowContext(ctx, query, name).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
		&category.ModifiedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}

	return category, nil
}
