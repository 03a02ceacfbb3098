// Package checkout implements the checkout orchestrator: it walks the cart
// in order, decrements stock one line at a time, clears the cart, and returns
// a receipt. There is no payment network call and no rollback of decrements
// applied before a failure.
package checkout

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

const noticeComplete = "Checkout Complete!"

// PaymentInput carries the card fields captured at checkout. They are
// shape-validated only; no charge is made.
type PaymentInput struct {
	CardholderName string `json:"cardholder_name" validate:"required,min=1,max=255"`
	CardNumber     string `json:"card_number" validate:"required,numeric,min=12,max=19"`
	Expiry         string `json:"expiry" validate:"required,len=5"`
	CVC            string `json:"cvc" validate:"required,numeric,min=3,max=4"`
}

// Result is the outcome of a successful checkout.
type Result struct {
	Receipt *domain.Receipt
	Notice  string
}

// Service orchestrates checkout over the cart and product repositories.
type Service struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	events   event.Publisher
	logger   *slog.Logger
}

// NewService creates a new checkout service.
func NewService(carts repository.CartRepository, products repository.ProductRepository, events event.Publisher, logger *slog.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		events:   events,
		logger:   logger,
	}
}

// Checkout runs the checkout flow for a session.
//
// The cart must be non-empty. Each line's stock is decremented sequentially,
// in cart order; a product that has vanished from the catalog is skipped. Any
// decrement failure halts processing and leaves the cart intact for retry —
// decrements already applied are not rolled back. On success the cart is
// cleared and a receipt is returned.
func (s *Service) Checkout(ctx context.Context, sessionID string, payment PaymentInput) (*Result, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			checkoutsTotal.WithLabelValues(resultEmptyCart).Inc()
			return nil, apperrors.CartEmpty()
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		checkoutsTotal.WithLabelValues(resultEmptyCart).Inc()
		return nil, apperrors.CartEmpty()
	}

	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Product gone from the catalog; nothing to decrement.
				s.logger.WarnContext(ctx, "checkout line skipped, product missing",
					slog.String("session_id", sessionID),
					slog.String("product_id", line.ProductID),
				)
				continue
			}
			s.logger.ErrorContext(ctx, "checkout halted on product fetch",
				slog.String("session_id", sessionID),
				slog.String("product_id", line.ProductID),
				slog.String("error", err.Error()),
			)
			checkoutsTotal.WithLabelValues(resultFailed).Inc()
			return nil, apperrors.CheckoutFailed(err)
		}

		updated, err := s.products.SetStock(ctx, product.ID, product.Stock-line.Quantity)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			s.logger.ErrorContext(ctx, "checkout halted on stock update",
				slog.String("session_id", sessionID),
				slog.String("product_id", product.ID),
				slog.String("error", err.Error()),
			)
			checkoutsTotal.WithLabelValues(resultFailed).Inc()
			return nil, apperrors.CheckoutFailed(err)
		}

		s.events.StockUpdated(ctx, updated)
	}

	receipt := &domain.Receipt{
		OrderID:     uuid.New().String(),
		SessionID:   sessionID,
		Lines:       cart.Lines,
		Currency:    cart.Currency,
		Subtotal:    cart.Subtotal(),
		Total:       cart.Total(),
		ItemCount:   cart.ItemCount(),
		CompletedAt: time.Now().UTC(),
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		// Stock is already decremented; failing here would invite a double
		// checkout on retry. Log and proceed with the receipt.
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	} else {
		s.events.CartCleared(ctx, sessionID)
	}

	s.events.CheckoutCompleted(ctx, receipt)
	s.events.Notice(ctx, sessionID, noticeComplete)

	checkoutsTotal.WithLabelValues(resultCompleted).Inc()
	unitsSoldTotal.Add(float64(receipt.ItemCount))
	revenueCentsTotal.Add(float64(receipt.Total))

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("order_id", receipt.OrderID),
		slog.Int("item_count", receipt.ItemCount),
		slog.Int64("total", receipt.Total),
	)

	return &Result{Receipt: receipt, Notice: noticeComplete}, nil
}
