package repository

import (
	"context"

	"github.com/soletrade/storefront/internal/domain"
)

// ProductRepository defines the interface for catalog persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns all products in catalog order.
	List(ctx context.Context) ([]domain.Product, error)

	// SetStock sets the stock count for a product, floored at 0, and returns
	// the updated product.
	SetStock(ctx context.Context, id string, stock int) (*domain.Product, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves the cart for a shopper session.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a shopper session.
	Delete(ctx context.Context, sessionID string) error
}
