package service

import (
	"context"
	"fmt"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

// ProductService defines the interface for product business logic. Create
// and update run the builder inside a single transaction: on success exactly
// one product row and at most one new category row are written atomically;
// on any failure nothing is.
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, fields map[string]any) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, fields map[string]any) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	tx       database.TxRunner
	products repository.ProductRepository
	builder  *ProductBuilder
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	tx database.TxRunner,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
) ProductService {
	return &productService{
		tx:       tx,
		products: products,
		builder:  NewProductBuilder(products, NewCategoryResolver(categories)),
	}
}

// ListProducts retrieves all products with their categories
func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product by ID
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct builds and persists a new product from raw request fields
func (s *productService) CreateProduct(ctx context.Context, fields map[string]any) (*domain.Product, error) {
	var product *domain.Product

	err := s.tx.InTx(ctx, func(q database.Querier) error {
		built, err := s.builder.Build(ctx, q, fields, nil)
		if err != nil {
			return err
		}
		product = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct applies raw request fields to an existing product
func (s *productService) UpdateProduct(ctx context.Context, id int64, fields map[string]any) (*domain.Product, error) {
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(q database.Querier) error {
		_, err := s.builder.Build(ctx, q, fields, existing)
		return err
	})
	if err != nil {
		return nil, err
	}

	return existing, nil
}

// DeleteProduct removes a product by ID
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}
