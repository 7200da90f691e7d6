package service

import (
	"context"
	"math"
	"strings"
	"time"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

// categoryDirective is the three-way outcome of the category field: absent
// means leave the product's category untouched, null or empty means clear
// it, a non-empty name means resolve or create that category.
type categoryDirective int

const (
	categoryKeep categoryDirective = iota
	categoryClear
	categorySet
)

// ProductBuilder validates raw request fields and populates a product
// entity, resolving its category on the way. Build runs entirely inside the
// transaction held by the caller, so a failure at any step leaves no writes
// behind.
type ProductBuilder struct {
	products repository.ProductRepository
	resolver *CategoryResolver
}

// NewProductBuilder creates a new ProductBuilder
func NewProductBuilder(products repository.ProductRepository, resolver *CategoryResolver) *ProductBuilder {
	return &ProductBuilder{
		products: products,
		resolver: resolver,
	}
}

// Build populates a product from the raw field map and persists it through
// q. A nil existing product means create; otherwise the existing instance is
// updated in place. Category resolution happens before any product field is
// applied, field validation happens before any write, and name uniqueness is
// checked by the store when the row is flushed.
func (b *ProductBuilder) Build(ctx context.Context, q database.Querier, fields map[string]any, existing *domain.Product) (*domain.Product, error) {
	product := existing
	if product == nil {
		product = domain.NewProduct()
	}

	directive, categoryName, verr := popCategory(fields)
	if verr != nil {
		return nil, verr
	}

	var category *domain.Category
	if directive == categorySet {
		resolved, err := b.resolver.Resolve(ctx, q, categoryName)
		if err != nil {
			return nil, err
		}
		category = resolved
	}

	violations := &ValidationError{}
	for key, value := range fields {
		if key == "category" {
			continue
		}
		if fe := applyField(product, key, value); fe != nil {
			violations.Fields = append(violations.Fields, *fe)
		}
	}

	if entityErr := validateProduct(product); entityErr != nil {
		violations.Fields = append(violations.Fields, entityErr.Fields...)
	}
	if len(violations.Fields) > 0 {
		return nil, violations
	}

	switch directive {
	case categoryClear:
		product.Category = nil
	case categorySet:
		product.Category = category
	}

	repo := b.products
	if q != nil {
		repo = repo.WithQuerier(q)
	}

	if existing == nil {
		if err := repo.Create(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	}

	now := time.Now()
	product.ModifiedAt = &now
	if err := repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// popCategory inspects the category key without touching the other fields.
func popCategory(fields map[string]any) (categoryDirective, string, *ValidationError) {
	raw, present := fields["category"]
	if !present {
		return categoryKeep, "", nil
	}

	switch v := raw.(type) {
	case nil:
		return categoryClear, "", nil
	case string:
		if strings.TrimSpace(v) == "" {
			return categoryClear, "", nil
		}
		return categorySet, v, nil
	default:
		return categoryKeep, "", newValidationError("category", "Category must be a string")
	}
}

// applyField sets one raw request field on the product, coercing from the
// decoded JSON types. Range constraints are left to entity validation; only
// shape problems (wrong type, unknown key) are reported here.
func applyField(product *domain.Product, key string, value any) *FieldError {
	switch key {
	case "name":
		s, ok := value.(string)
		if !ok {
			return &FieldError{Field: "name", Message: "Product name must be a string"}
		}
		product.Name = strings.TrimSpace(s)
	case "sku":
		if value == nil {
			product.SKU = nil
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return &FieldError{Field: "sku", Message: "SKU must be a string"}
		}
		product.SKU = &s
	case "price":
		if value == nil {
			product.Price = nil
			return nil
		}
		f, ok := value.(float64)
		if !ok {
			return &FieldError{Field: "price", Message: "Price must in currency format XX.XX"}
		}
		product.Price = &f
	case "quantity":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return &FieldError{Field: "quantity", Message: "Quantity must be a whole number"}
		}
		product.Quantity = int(f)
	default:
		return &FieldError{Field: key, Message: "Unrecognized product property"}
	}
	return nil
}
