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
	ErrProductNotFound  = errors.New("product not found")
	ErrProductNameTaken = errors.New("product with this name already exists")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// WithQuerier returns a copy of the repository bound to q, typically a
	// transaction obtained from database.TxRunner.
	WithQuerier(q database.Querier) ProductRepository
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	q database.Querier
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(q database.Querier) ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) WithQuerier(q database.Querier) ProductRepository {
	return &productRepository{q: q}
}

// categoryID returns the foreign key value for the product's category
// reference.
func categoryID(product *domain.Product) *int64 {
	if product.Category == nil {
		return nil
	}
	return &product.Category.ID
}

// Create inserts a new product and fills in its generated ID. A duplicate
// name surfaces as ErrProductNameTaken.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, category, sku, price, quantity, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRowContext(
		ctx,
		query,
		product.Name,
		categoryID(product),
		product.SKU,
		product.Price,
		product.Quantity,
		product.CreatedAt,
		product.ModifiedAt,
	).Scan(&product.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductNameTaken
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, sku = $4, price = $5,
		    quantity = $6, modified_at = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		categoryID(product),
		product.SKU,
		product.Price,
		product.Quantity,
		product.ModifiedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductNameTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID with its category joined in
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.price, p.quantity, p.created_at, p.modified_at,
		       c.id, c.name, c.created_at, c.modified_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category
		WHERE p.id = $1
	`

	product, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products with their categories joined in, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.sku, p.price, p.quantity, p.created_at, p.modified_at,
		       c.id, c.name, c.created_at, c.modified_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category
		ORDER BY p.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var (
		catID         sql.NullInt64
		catName       sql.NullString
		catCreatedAt  sql.NullTime
		catModifiedAt sql.NullTime
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.SKU,
		&product.Price,
		&product.Quantity,
		&product.CreatedAt,
		&product.ModifiedAt,
		&catID,
		&catName,
		&catCreatedAt,
		&catModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if catID.Valid {
		product.Category = &domain.Category{
			ID:        catID.Int64,
			Name:      catName.String,
			CreatedAt: catCreatedAt.Time,
		}
		if catModifiedAt.Valid {
			product.Category.ModifiedAt = &catModifiedAt.Time
		}
	}

	return product, nil
}
