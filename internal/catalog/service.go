// Package catalog implements the product catalog: listing, lookup, creation,
// and the stock mutations driven by checkout and the admin endpoint.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/internal/event"
	"github.com/soletrade/storefront/internal/repository"
)

// CreateProductInput carries the fields for creating a catalog product.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Price       int64  `json:"price" validate:"gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// Service implements catalog operations over the product repository.
type Service struct {
	products repository.ProductRepository
	events   event.Publisher
	logger   *slog.Logger
}

// NewService creates a new catalog service.
func NewService(products repository.ProductRepository, events event.Publisher, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		events:   events,
		logger:   logger,
	}
}

// ListProducts returns all catalog products.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// CreateProduct adds a new product to the catalog with a generated ID.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	p := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Price:       input.Price,
		Stock:       input.Stock,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("name", p.Name),
	)

	return p, nil
}

// SetStock sets the stock count for a product. Negative values are floored at
// 0 by the repository. Publishes a stock_updated event on success.
func (s *Service) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	p, err := s.products.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}

	s.events.StockUpdated(ctx, p)

	s.logger.InfoContext(ctx, "product stock updated",
		slog.String("product_id", p.ID),
		slog.Int("stock", p.Stock),
	)

	return p, nil
}
