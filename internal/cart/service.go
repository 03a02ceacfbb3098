// Package cart implements the per-session shopping cart: adding, removing,
// and re-quantifying lines against live stock bounds. Stock-bound violations
// never surface as errors; they leave the cart unchanged (or clamped) and
// carry a shopper-facing notice instead.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/internal/event"
	"github.com/soletrade/storefront/internal/repository"
	apperrors "github.com/soletrade/storefront/pkg/errors"
)

const noticeOutOfStock = "Sorry, this item is out of stock."

func noticeOnlyAvailable(stock int) string {
	return fmt.Sprintf("Sorry, only %d items available in stock.", stock)
}

// Result is the outcome of a cart mutation: the cart as stored afterwards and
// an optional shopper-facing notice (toast) explaining a bounded operation.
type Result struct {
	Cart   *domain.Cart
	Notice string
}

// Service implements cart operations over the cart and product repositories.
type Service struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	events   event.Publisher
	logger   *slog.Logger
}

// NewService creates a new cart service.
func NewService(carts repository.CartRepository, products repository.ProductRepository, events event.Publisher, logger *slog.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		events:   events,
		logger:   logger,
	}
}

// Get returns the cart for a session. A session with no stored cart gets a
// fresh empty cart; it is not persisted until the first mutation.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.loadOrCreate(ctx, sessionID)
}

// AddItem adds one unit of a product to the cart. A new line snapshots the
// product's name, price, and image at add time. If the product is out of
// stock, or the line already holds all available stock, the cart is left
// unchanged and a notice is returned instead of an error.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string) (*Result, error) {
	mutationsTotal.WithLabelValues("add").Inc()

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(productID)
	if idx >= 0 {
		if cart.Lines[idx].Quantity+1 > product.Stock {
			s.notify(ctx, sessionID, noticeOnlyAvailable(product.Stock))
			return &Result{Cart: cart, Notice: noticeOnlyAvailable(product.Stock)}, nil
		}
		cart.Lines[idx].Quantity++
	} else {
		if !product.InStock() {
			s.notify(ctx, sessionID, noticeOutOfStock)
			return &Result{Cart: cart, Notice: noticeOutOfStock}, nil
		}
		cart.Lines = append(cart.Lines, domain.Line{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Quantity:  1,
			AddedAt:   time.Now().UTC(),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return &Result{Cart: cart}, nil
}

// UpdateQuantity sets the quantity of an existing line, clamped to the
// product's available stock. Quantities below 1 are rejected without
// modifying or removing the line. A missing line is an error.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*Result, error) {
	mutationsTotal.WithLabelValues("update").Inc()

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", productID)
	}

	if quantity < 1 {
		return &Result{Cart: cart}, nil
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	notice := ""
	if quantity > product.Stock {
		notice = noticeOnlyAvailable(product.Stock)
		s.notify(ctx, sessionID, notice)
		if product.Stock < 1 {
			// Nothing left to clamp to; keep the line as-is.
			return &Result{Cart: cart, Notice: notice}, nil
		}
		quantity = product.Stock
	}

	cart.Lines[idx].Quantity = quantity

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return &Result{Cart: cart, Notice: notice}, nil
}

// RemoveLine deletes the line for a product. Removing an absent line is a
// no-op, not an error.
func (s *Service) RemoveLine(ctx context.Context, sessionID, productID string) (*Result, error) {
	mutationsTotal.WithLabelValues("remove").Inc()

	cart, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindLine(productID)
	if idx < 0 {
		return &Result{Cart: cart}, nil
	}

	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return &Result{Cart: cart}, nil
}

// Clear unconditionally empties the cart for a session.
func (s *Service) Clear(ctx context.Context, sessionID string) (*Result, error) {
	mutationsTotal.WithLabelValues("clear").Inc()

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	s.events.CartCleared(ctx, sessionID)

	return &Result{Cart: newCart(sessionID)}, nil
}

// loadOrCreate fetches the stored cart or builds a fresh empty one. Every
// mutation goes through this, so each call observes the previous call's
// stored result rather than a stale in-memory copy.
func (s *Service) loadOrCreate(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return newCart(sessionID), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	s.events.CartUpdated(ctx, cart)

	return nil
}

func (s *Service) notify(ctx context.Context, sessionID, message string) {
	noticesTotal.Inc()
	s.events.Notice(ctx, sessionID, message)
	s.logger.InfoContext(ctx, "cart notice",
		slog.String("session_id", sessionID),
		slog.String("notice", message),
	)
}

func newCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Lines:     []domain.Line{},
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
