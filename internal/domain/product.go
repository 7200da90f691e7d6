package domain

import (
	"time"
)

// Product represents a product in the catalog. A product may optionally
// belong to a single category; deleting that category detaches its products
// rather than removing them.
type Product struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name" validate:"required,max=100"`
	Category   *Category  `json:"category" db:"-"`
	SKU        *string    `json:"sku" db:"sku" validate:"omitempty,sku"`
	Price      *float64   `json:"price" db:"price" validate:"omitempty,gte=0"`
	Quantity   int        `json:"quantity" db:"quantity" validate:"gte=0"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt *time.Time `json:"modified_at" db:"modified_at"`
}

// NewProduct returns an empty product with its creation timestamp set and
// quantity defaulted to zero.
func NewProduct() *Product {
	return &Product{
		Quantity:  0,
		CreatedAt: time.Now(),
	}
}

// CategoryName returns the name of the product's category, or nil when the
// product is uncategorized.
func (p *Product) CategoryName() *string {
	if p.Category == nil {
		return nil
	}
	return &p.Category.Name
}

// Category represents a product category
type Category struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name" validate:"required"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt *time.Time `json:"modified_at" db:"modified_at"`
}

// NewCategory returns a category with the given name and its creation
// timestamp set.
func NewCategory(name string) *Category {
	return &Category{
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Client represents issued OAuth client credentials. Only a bcrypt hash of
// the secret is stored; the plaintext secret is returned once at creation.
type Client struct {
	ID          int64     `json:"id" db:"id"`
	ClientID    string    `json:"client_id" db:"client_id"`
	SecretHash  string    `json:"-" db:"secret_hash"`
	RedirectURI string    `json:"redirect_uri" db:"redirect_uri"`
	GrantType   string    `json:"grant_type" db:"grant_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
