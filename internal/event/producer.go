package event

import (
	"context"
	"log/slog"

	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/pkg/kafka"
	"github.com/soletrade/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated       = "storefront.cart.updated"
	TopicCartCleared       = "storefront.cart.cleared"
	TopicStockUpdated      = "storefront.product.stock_updated"
	TopicCheckoutCompleted = "storefront.checkout.completed"
	TopicNotice            = "storefront.notice"
)

const source = "storefront"

// Publisher emits domain events. Publishing is fire-and-forget: failures are
// logged and never surfaced to the caller, so an unreachable broker cannot
// fail a shopper-facing operation.
type Publisher interface {
	CartUpdated(ctx context.Context, cart *domain.Cart)
	CartCleared(ctx context.Context, sessionID string)
	StockUpdated(ctx context.Context, product *domain.Product)
	CheckoutCompleted(ctx context.Context, receipt *domain.Receipt)
	Notice(ctx context.Context, sessionID, message string)
}

// CartUpdatedPayload is the data payload for cart.updated events.
type CartUpdatedPayload struct {
	SessionID string `json:"session_id"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
	LineCount int    `json:"line_count"`
}

// CartClearedPayload is the data payload for cart.cleared events.
type CartClearedPayload struct {
	SessionID string `json:"session_id"`
}

// StockUpdatedPayload is the data payload for product.stock_updated events.
type StockUpdatedPayload struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

// NoticePayload is the data payload for notice events.
type NoticePayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// KafkaPublisher publishes domain events to Kafka.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(producer *kafka.Producer, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: log}
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.producer.Publish(ctx, topic, evt); err != nil {
		// Already logged by the producer; nothing for the caller to do.
		return
	}
}

// CartUpdated publishes a cart.updated event.
func (p *KafkaPublisher) CartUpdated(ctx context.Context, cart *domain.Cart) {
	p.publish(ctx, TopicCartUpdated, "cart.updated", cart.SessionID, "cart", CartUpdatedPayload{
		SessionID: cart.SessionID,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
		LineCount: len(cart.Lines),
	})
}

// CartCleared publishes a cart.cleared event.
func (p *KafkaPublisher) CartCleared(ctx context.Context, sessionID string) {
	p.publish(ctx, TopicCartCleared, "cart.cleared", sessionID, "cart", CartClearedPayload{
		SessionID: sessionID,
	})
}

// StockUpdated publishes a product.stock_updated event.
func (p *KafkaPublisher) StockUpdated(ctx context.Context, product *domain.Product) {
	p.publish(ctx, TopicStockUpdated, "product.stock_updated", product.ID, "product", StockUpdatedPayload{
		ProductID: product.ID,
		Stock:     product.Stock,
	})
}

// CheckoutCompleted publishes a checkout.completed event carrying the receipt.
func (p *KafkaPublisher) CheckoutCompleted(ctx context.Context, receipt *domain.Receipt) {
	p.publish(ctx, TopicCheckoutCompleted, "checkout.completed", receipt.OrderID, "order", receipt)
}

// Notice publishes a shopper-facing notice event.
func (p *KafkaPublisher) Notice(ctx context.Context, sessionID, message string) {
	p.publish(ctx, TopicNotice, "notice", sessionID, "cart", NoticePayload{
		SessionID: sessionID,
		Message:   message,
	})
}

// NopPublisher discards all events. Used when Kafka is disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) CartUpdated(context.Context, *domain.Cart)          {}
func (NopPublisher) CartCleared(context.Context, string)                {}
func (NopPublisher) StockUpdated(context.Context, *domain.Product)      {}
func (NopPublisher) CheckoutCompleted(context.Context, *domain.Receipt) {}
func (NopPublisher) Notice(context.Context, string, string)             {}
