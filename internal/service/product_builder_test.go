package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) WithQuerier(q database.Querier) repository.ProductRepository {
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.Name == product.Name {
			return repository.ErrProductNameTaken
		}
	}
	product.ID = m.nextID
	m.nextID++
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	for _, p := range m.products {
		if p.ID != product.ID && p.Name == product.Name {
			return repository.ErrProductNameTaken
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		copied := *p
		products = append(products, &copied)
	}
	return products, nil
}

type mockCategoryRepository struct {
	categories map[string]*domain.Category
	nextID     int64
	creates    int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[string]*domain.Category),
		nextID:     1,
	}
}

func (m *mockCategoryRepository) WithQuerier(q database.Querier) repository.CategoryRepository {
	return m
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if _, exists := m.categories[category.Name]; exists {
		return repository.ErrCategoryNameTaken
	}
	category.ID = m.nextID
	m.nextID++
	m.creates++
	copied := *category
	m.categories[category.Name] = &copied
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, c := range m.categories {
		copied := *c
		categories = append(categories, &copied)
	}
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	category, exists := m.categories[name]
	if !exists {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

// mockTxRunner runs the transaction function directly; the mock repositories
// are their own store so there is nothing to commit.
type mockTxRunner struct{}

func (m *mockTxRunner) InTx(ctx context.Context, fn func(q database.Querier) error) error {
	return fn(nil)
}

func newTestBuilder() (*ProductBuilder, *mockProductRepository, *mockCategoryRepository) {
	products := newMockProductRepository()
	categories := newMockCategoryRepository()
	builder := NewProductBuilder(products, NewCategoryResolver(categories))
	return builder, products, categories
}

// Feature: product-catalog, Property 1: Valid fields round-trip through build
func TestProperty_ValidFieldsRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("build preserves every supplied field and generates identity", prop.ForAll(
		func(name string, skuDigits string, price float64, quantity int) bool {
			builder, _, _ := newTestBuilder()
			ctx := context.Background()

			sku := "A" + skuDigits
			fields := map[string]any{
				"name":     name,
				"sku":      sku,
				"price":    price,
				"quantity": float64(quantity),
			}

			product, err := builder.Build(ctx, nil, fields, nil)
			if err != nil {
				t.Logf("FAIL: Build returned error for valid fields: %v", err)
				return false
			}

			if product.ID == 0 {
				t.Logf("FAIL: Build did not assign an ID")
				return false
			}
			if product.CreatedAt.IsZero() {
				t.Logf("FAIL: Build did not set created_at")
				return false
			}
			if product.ModifiedAt != nil {
				t.Logf("FAIL: Newly created product has modified_at set")
				return false
			}
			if product.Name != strings.TrimSpace(name) {
				t.Logf("FAIL: Name mismatch: %q != %q", product.Name, name)
				return false
			}
			if product.SKU == nil || *product.SKU != sku {
				t.Logf("FAIL: SKU mismatch")
				return false
			}
			if product.Price == nil || *product.Price != price {
				t.Logf("FAIL: Price mismatch")
				return false
			}
			if product.Quantity != quantity {
				t.Logf("FAIL: Quantity mismatch")
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9 ]{0,50}[A-Za-z0-9]`),
		gen.RegexMatch(`\d{4}`),
		gen.Float64Range(0, 100000),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: product-catalog, Property 2: Invalid names are rejected without writes
func TestProperty_InvalidNamesAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("blank or overlong names fail validation and write nothing", prop.ForAll(
		func(longSuffix string, blank string) bool {
			builder, products, _ := newTestBuilder()
			ctx := context.Background()

			// Name longer than 100 characters
			longName := strings.Repeat("x", 101) + longSuffix
			_, err := builder.Build(ctx, nil, map[string]any{"name": longName}, nil)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Logf("FAIL: Expected ValidationError for long name, got: %v", err)
				return false
			}

			// Whitespace-only name
			_, err = builder.Build(ctx, nil, map[string]any{"name": blank}, nil)
			if !errors.As(err, &verr) {
				t.Logf("FAIL: Expected ValidationError for blank name, got: %v", err)
				return false
			}

			if len(products.products) != 0 {
				t.Logf("FAIL: Rejected builds wrote %d products", len(products.products))
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{0,20}`),
		gen.RegexMatch(`[ \t]{0,5}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: product-catalog, Property 3: SKU format is enforced
func TestProperty_SKUFormatIsEnforced(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("SKUs not matching A followed by four digits are rejected", prop.ForAll(
		func(sku string) bool {
			if skuRegex.MatchString(sku) {
				return true // Skip the rare accidental valid SKU
			}

			builder, products, _ := newTestBuilder()
			ctx := context.Background()

			_, err := builder.Build(ctx, nil, map[string]any{
				"name": "SKU probe",
				"sku":  sku,
			}, nil)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Logf("FAIL: Expected ValidationError for SKU %q, got: %v", sku, err)
				return false
			}

			return len(products.products) == 0
		},
		gen.RegexMatch(`[A-Za-z0-9]{0,8}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: product-catalog, Property 4: Negative amounts are rejected
func TestProperty_NegativeAmountsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative price or quantity fails validation", prop.ForAll(
		func(price float64, quantity int) bool {
			builder, _, _ := newTestBuilder()
			ctx := context.Background()

			_, err := builder.Build(ctx, nil, map[string]any{
				"name":  "Amount probe",
				"price": -price,
			}, nil)
			var verr *ValidationError
			if price > 0 && !errors.As(err, &verr) {
				t.Logf("FAIL: Expected ValidationError for price %f, got: %v", -price, err)
				return false
			}

			_, err = builder.Build(ctx, nil, map[string]any{
				"name":     "Amount probe",
				"quantity": float64(-quantity),
			}, nil)
			if quantity > 0 && !errors.As(err, &verr) {
				t.Logf("FAIL: Expected ValidationError for quantity %d, got: %v", -quantity, err)
				return false
			}

			return true
		},
		gen.Float64Range(0.01, 100000),
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestBuild_CreatesCategoryWhenMissing(t *testing.T) {
	builder, _, categories := newTestBuilder()
	ctx := context.Background()

	product, err := builder.Build(ctx, nil, map[string]any{
		"name":     "Fony UHD HDR 55 4k TV",
		"sku":      "A0004",
		"price":    1399.99,
		"quantity": float64(5),
		"category": "TVs",
	}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if product.Category == nil || product.Category.Name != "TVs" {
		t.Fatalf("Expected product category TVs, got %+v", product.Category)
	}
	if categories.creates != 1 {
		t.Fatalf("Expected one category creation, got %d", categories.creates)
	}
	if _, err := categories.FindByName(ctx, "TVs"); err != nil {
		t.Fatalf("Category TVs was not persisted: %v", err)
	}
}

func TestBuild_ReusesExistingCategory(t *testing.T) {
	builder, _, categories := newTestBuilder()
	ctx := context.Background()

	first, err := builder.Build(ctx, nil, map[string]any{
		"name":     "First TV",
		"category": "TVs",
	}, nil)
	if err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	second, err := builder.Build(ctx, nil, map[string]any{
		"name":     "Second TV",
		"category": "TVs",
	}, nil)
	if err != nil {
		t.Fatalf("Second build failed: %v", err)
	}

	if first.Category.ID != second.Category.ID {
		t.Fatalf("Expected same category ID, got %d and %d", first.Category.ID, second.Category.ID)
	}
	if categories.creates != 1 {
		t.Fatalf("Expected exactly one category creation, got %d", categories.creates)
	}
}

func TestBuild_DuplicateProductNameIsRejected(t *testing.T) {
	builder, products, _ := newTestBuilder()
	ctx := context.Background()

	fields := map[string]any{"name": "Fony UHD HDR 55 4k TV"}
	if _, err := builder.Build(ctx, nil, fields, nil); err != nil {
		t.Fatalf("First build failed: %v", err)
	}

	_, err := builder.Build(ctx, nil, map[string]any{"name": "Fony UHD HDR 55 4k TV"}, nil)
	if !errors.Is(err, repository.ErrProductNameTaken) {
		t.Fatalf("Expected ErrProductNameTaken, got: %v", err)
	}
	if len(products.products) != 1 {
		t.Fatalf("Expected one product after duplicate rejection, got %d", len(products.products))
	}
}

func TestBuild_CategoryDirectives(t *testing.T) {
	tests := []struct {
		name        string
		fields      map[string]any
		wantKept    bool
		wantCleared bool
	}{
		{
			name:     "absent category leaves the reference untouched",
			fields:   map[string]any{"quantity": float64(2)},
			wantKept: true,
		},
		{
			name:        "null category clears the reference",
			fields:      map[string]any{"category": nil},
			wantCleared: true,
		},
		{
			name:        "empty category clears the reference",
			fields:      map[string]any{"category": ""},
			wantCleared: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder, _, _ := newTestBuilder()
			ctx := context.Background()

			created, err := builder.Build(ctx, nil, map[string]any{
				"name":     "Categorized product",
				"category": "TVs",
			}, nil)
			if err != nil {
				t.Fatalf("Setup build failed: %v", err)
			}

			updated, err := builder.Build(ctx, nil, tt.fields, created)
			if err != nil {
				t.Fatalf("Update build failed: %v", err)
			}

			if tt.wantKept && (updated.Category == nil || updated.Category.Name != "TVs") {
				t.Fatalf("Expected category to be kept, got %+v", updated.Category)
			}
			if tt.wantCleared && updated.Category != nil {
				t.Fatalf("Expected category to be cleared, got %+v", updated.Category)
			}
			if updated.ModifiedAt == nil {
				t.Fatal("Expected modified_at to be stamped on update")
			}
		})
	}
}

func TestBuild_ClearingCategoryKeepsCategoryRow(t *testing.T) {
	builder, _, categories := newTestBuilder()
	ctx := context.Background()

	created, err := builder.Build(ctx, nil, map[string]any{
		"name":     "Detachable product",
		"category": "TVs",
	}, nil)
	if err != nil {
		t.Fatalf("Setup build failed: %v", err)
	}

	if _, err := builder.Build(ctx, nil, map[string]any{"category": nil}, created); err != nil {
		t.Fatalf("Clearing build failed: %v", err)
	}

	if _, err := categories.FindByName(ctx, "TVs"); err != nil {
		t.Fatalf("Category row should be untouched after clearing: %v", err)
	}
}

func TestBuild_UnknownFieldIsRejected(t *testing.T) {
	builder, products, _ := newTestBuilder()
	ctx := context.Background()

	_, err := builder.Build(ctx, nil, map[string]any{
		"name":  "Probe",
		"color": "red",
	}, nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for unknown field, got: %v", err)
	}
	if _, ok := verr.FieldMessages()["color"]; !ok {
		t.Fatalf("Expected violation keyed by unknown field, got %v", verr.FieldMessages())
	}
	if len(products.products) != 0 {
		t.Fatal("Unknown field rejection should write nothing")
	}
}

func TestBuild_FailedCategoryResolutionAbortsBeforeFields(t *testing.T) {
	builder, _, _ := newTestBuilder()
	ctx := context.Background()

	existing, err := builder.Build(ctx, nil, map[string]any{"name": "Original name"}, nil)
	if err != nil {
		t.Fatalf("Setup build failed: %v", err)
	}

	_, err = builder.Build(ctx, nil, map[string]any{
		"name":     "Renamed",
		"category": "   ",
	}, existing)
	if err != nil {
		t.Fatalf("Whitespace-only category should clear, not fail: %v", err)
	}

	// A category value of the wrong type aborts before fields are applied.
	victim, err := builder.Build(ctx, nil, map[string]any{"name": "Victim"}, nil)
	if err != nil {
		t.Fatalf("Setup build failed: %v", err)
	}
	_, err = builder.Build(ctx, nil, map[string]any{
		"name":     "Should not stick",
		"category": float64(7),
	}, victim)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for non-string category, got: %v", err)
	}
	if victim.Name != "Victim" {
		t.Fatalf("Fields were applied despite category failure: %q", victim.Name)
	}
}
