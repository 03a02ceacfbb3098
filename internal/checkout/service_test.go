package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soletrade/storefront/internal/cart"
	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/internal/repository"
	apperrors "github.com/soletrade/storefront/pkg/errors"
	"github.com/soletrade/storefront/pkg/logger"
)

// memProductRepository is a map-backed repository.ProductRepository with the
// same floor-at-zero SetStock contract as the Postgres implementation.
// failSetStockFor injects a decrement failure for one product ID.
type memProductRepository struct {
	products        map[string]*domain.Product
	order           []string
	stockSets       []string
	failSetStockFor string
}

func newMemProductRepository(products ...*domain.Product) *memProductRepository {
	repo := &memProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
		repo.order = append(repo.order, p.ID)
	}
	return repo
}

func (m *memProductRepository) Create(_ context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *memProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepository) List(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.products[id])
	}
	return out, nil
}

func (m *memProductRepository) SetStock(_ context.Context, id string, stock int) (*domain.Product, error) {
	if id == m.failSetStockFor {
		return nil, fmt.Errorf("stock update rejected")
	}
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	if stock < 0 {
		stock = 0
	}
	p.Stock = stock
	m.stockSets = append(m.stockSets, id)
	cp := *p
	return &cp, nil
}

type memCartRepository struct {
	carts map[string][]byte
}

func newMemCartRepository() *memCartRepository {
	return &memCartRepository{carts: make(map[string][]byte)}
}

func (m *memCartRepository) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	data, ok := m.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	var c domain.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *memCartRepository) Save(_ context.Context, c *domain.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.carts[c.SessionID] = data
	return nil
}

func (m *memCartRepository) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type capturingPublisher struct {
	stockUpdates []string
	cleared      []string
	receipts     []*domain.Receipt
	notices      []string
}

func (p *capturingPublisher) CartUpdated(context.Context, *domain.Cart) {}
func (p *capturingPublisher) CartCleared(_ context.Context, sessionID string) {
	p.cleared = append(p.cleared, sessionID)
}
func (p *capturingPublisher) StockUpdated(_ context.Context, product *domain.Product) {
	p.stockUpdates = append(p.stockUpdates, product.ID)
}
func (p *capturingPublisher) CheckoutCompleted(_ context.Context, receipt *domain.Receipt) {
	p.receipts = append(p.receipts, receipt)
}
func (p *capturingPublisher) Notice(_ context.Context, _ string, message string) {
	p.notices = append(p.notices, message)
}

var _ repository.ProductRepository = (*memProductRepository)(nil)
var _ repository.CartRepository = (*memCartRepository)(nil)

func testPayment() PaymentInput {
	return PaymentInput{
		CardholderName: "Ada Lovelace",
		CardNumber:     "4242424242424242",
		Expiry:         "12/30",
		CVC:            "123",
	}
}

func saveCart(t *testing.T, carts *memCartRepository, sessionID string, lines ...domain.Line) {
	t.Helper()
	require.NoError(t, carts.Save(context.Background(), &domain.Cart{
		ID:        "cart-1",
		SessionID: sessionID,
		Currency:  "USD",
		Lines:     lines,
	}))
}

func newTestService(products *memProductRepository, carts *memCartRepository, events *capturingPublisher) *Service {
	log := logger.NewWithWriter("checkout-test", "error", io.Discard)
	return NewService(carts, products, events, log)
}

func TestCheckout_EmptyCart(t *testing.T) {
	products := newMemProductRepository()
	carts := newMemCartRepository()
	svc := newTestService(products, carts, &capturingPublisher{})

	res, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrCartEmpty)
	assert.Empty(t, products.stockSets)
}

func TestCheckout_SavedEmptyCart(t *testing.T) {
	products := newMemProductRepository()
	carts := newMemCartRepository()
	saveCart(t, carts, "sess-1")
	svc := newTestService(products, carts, &capturingPublisher{})

	_, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	assert.ErrorIs(t, err, apperrors.ErrCartEmpty)
}

func TestCheckout_DecrementsStockInCartOrder(t *testing.T) {
	products := newMemProductRepository(
		&domain.Product{ID: "prod-1", Name: "Wireless Headphones", Price: 12999, Stock: 10},
		&domain.Product{ID: "prod-2", Name: "Smart Watch", Price: 19999, Stock: 5},
	)
	carts := newMemCartRepository()
	saveCart(t, carts, "sess-1",
		domain.Line{ProductID: "prod-2", Price: 19999, Quantity: 2},
		domain.Line{ProductID: "prod-1", Price: 12999, Quantity: 3},
	)
	events := &capturingPublisher{}
	svc := newTestService(products, carts, events)

	res, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	require.NoError(t, err)

	assert.Equal(t, []string{"prod-2", "prod-1"}, products.stockSets)
	assert.Equal(t, 3, products.products["prod-2"].Stock)
	assert.Equal(t, 7, products.products["prod-1"].Stock)

	assert.Equal(t, "Checkout Complete!", res.Notice)
	assert.Equal(t, int64(2*19999+3*12999), res.Receipt.Total)
	assert.Equal(t, 5, res.Receipt.ItemCount)
	assert.NotEmpty(t, res.Receipt.OrderID)

	// Cart is gone, events published.
	_, err = carts.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []string{"sess-1"}, events.cleared)
	require.Len(t, events.receipts, 1)
	assert.Contains(t, events.notices, "Checkout Complete!")
}

func TestCheckout_SkipsMissingProduct(t *testing.T) {
	products := newMemProductRepository(
		&domain.Product{ID: "prod-2", Name: "Smart Watch", Price: 19999, Stock: 5},
	)
	carts := newMemCartRepository()
	saveCart(t, carts, "sess-1",
		domain.Line{ProductID: "ghost", Price: 999, Quantity: 1},
		domain.Line{ProductID: "prod-2", Price: 19999, Quantity: 1},
	)
	svc := newTestService(products, carts, &capturingPublisher{})

	res, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	require.NoError(t, err)

	// The vanished product is a no-op; the rest proceeds and the receipt
	// still prices every line at its snapshot.
	assert.Equal(t, []string{"prod-2"}, products.stockSets)
	assert.Equal(t, 4, products.products["prod-2"].Stock)
	assert.Equal(t, int64(999+19999), res.Receipt.Total)
}

func TestCheckout_FailureHaltsAndPreservesCart(t *testing.T) {
	products := newMemProductRepository(
		&domain.Product{ID: "prod-1", Name: "Wireless Headphones", Price: 12999, Stock: 10},
		&domain.Product{ID: "prod-2", Name: "Smart Watch", Price: 19999, Stock: 5},
		&domain.Product{ID: "prod-3", Name: "Laptop Stand", Price: 4999, Stock: 8},
	)
	products.failSetStockFor = "prod-2"
	carts := newMemCartRepository()
	saveCart(t, carts, "sess-1",
		domain.Line{ProductID: "prod-1", Price: 12999, Quantity: 2},
		domain.Line{ProductID: "prod-2", Price: 19999, Quantity: 1},
		domain.Line{ProductID: "prod-3", Price: 4999, Quantity: 1},
	)
	events := &capturingPublisher{}
	svc := newTestService(products, carts, events)

	res, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrCheckoutFailed)

	// The first decrement stands (no rollback), the failing line halts the
	// rest, and the cart survives for retry.
	assert.Equal(t, []string{"prod-1"}, products.stockSets)
	assert.Equal(t, 8, products.products["prod-1"].Stock)
	assert.Equal(t, 8, products.products["prod-3"].Stock)

	got, err := carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 3)
	assert.Empty(t, events.receipts)
}

func TestCheckout_OversoldLineFloorsAtZero(t *testing.T) {
	products := newMemProductRepository(
		&domain.Product{ID: "prod-1", Name: "Wireless Headphones", Price: 12999, Stock: 2},
	)
	carts := newMemCartRepository()
	// Stock dropped below the cart quantity after the line was created.
	saveCart(t, carts, "sess-1", domain.Line{ProductID: "prod-1", Price: 12999, Quantity: 5})
	svc := newTestService(products, carts, &capturingPublisher{})

	_, err := svc.Checkout(context.Background(), "sess-1", testPayment())
	require.NoError(t, err)
	assert.Equal(t, 0, products.products["prod-1"].Stock)
}

// TestCheckout_FullFlow drives the documented storefront scenario through the
// real cart service: three adds, an update to 10, a clamped update to 11,
// then checkout draining stock to zero and emptying the cart.
func TestCheckout_FullFlow(t *testing.T) {
	products := newMemProductRepository(
		&domain.Product{ID: "1", Name: "Wireless Headphones", Price: 12999, Stock: 10},
	)
	carts := newMemCartRepository()
	events := &capturingPublisher{}
	log := logger.NewWithWriter("flow-test", "error", io.Discard)

	cartSvc := cart.NewService(carts, products, events, log)
	checkoutSvc := NewService(carts, products, events, log)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := cartSvc.AddItem(ctx, "sess-1", "1")
		require.NoError(t, err)
		assert.Empty(t, res.Notice)
	}

	c, err := cartSvc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, int64(38997), c.Subtotal())

	res, err := cartSvc.UpdateQuantity(ctx, "sess-1", "1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Cart.Lines[0].Quantity)

	res, err = cartSvc.UpdateQuantity(ctx, "sess-1", "1", 11)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Cart.Lines[0].Quantity)
	assert.Equal(t, "Sorry, only 10 items available in stock.", res.Notice)

	out, err := checkoutSvc.Checkout(ctx, "sess-1", testPayment())
	require.NoError(t, err)
	assert.Equal(t, 0, products.products["1"].Stock)
	assert.Equal(t, int64(129990), out.Receipt.Total)

	c, err = cartSvc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
