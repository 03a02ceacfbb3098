package cart

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/internal/repository"
	apperrors "github.com/soletrade/storefront/pkg/errors"
	"github.com/soletrade/storefront/pkg/logger"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	args := m.Called(ctx, id, stock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

// memCartRepository is a map-backed repository.CartRepository. Storing JSON
// copies keeps mutations of a returned cart from leaking into the store, the
// same way the Redis repository behaves.
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

func (m *memCartRepository) Save(_ context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.carts[cart.SessionID] = data
	return nil
}

func (m *memCartRepository) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	cartUpdates int
	cleared     []string
	notices     []string
}

func (p *capturingPublisher) CartUpdated(context.Context, *domain.Cart) { p.cartUpdates++ }
func (p *capturingPublisher) CartCleared(_ context.Context, sessionID string) {
	p.cleared = append(p.cleared, sessionID)
}
func (p *capturingPublisher) StockUpdated(context.Context, *domain.Product)      {}
func (p *capturingPublisher) CheckoutCompleted(context.Context, *domain.Receipt) {}
func (p *capturingPublisher) Notice(_ context.Context, _ string, message string) {
	p.notices = append(p.notices, message)
}

func newTestService(t *testing.T) (*Service, *mockProductRepository, *memCartRepository, *capturingPublisher) {
	t.Helper()
	products := new(mockProductRepository)
	carts := newMemCartRepository()
	events := &capturingPublisher{}
	log := logger.NewWithWriter("cart-test", "error", io.Discard)
	return NewService(carts, products, events, log), products, carts, events
}

var _ repository.ProductRepository = (*mockProductRepository)(nil)
var _ repository.CartRepository = (*memCartRepository)(nil)

func headphones(stock int) *domain.Product {
	return &domain.Product{
		ID:    "prod-1",
		Name:  "Wireless Headphones",
		Price: 12999,
		Stock: stock,
	}
}

func TestGet_ReturnsEmptyCartForNewSession(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	cart, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.True(t, cart.IsEmpty())
}

func TestAddItem_CreatesLineWithSnapshot(t *testing.T) {
	svc, products, _, events := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	res, err := svc.AddItem(context.Background(), "sess-1", "prod-1")
	require.NoError(t, err)
	assert.Empty(t, res.Notice)
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, "prod-1", res.Cart.Lines[0].ProductID)
	assert.Equal(t, "Wireless Headphones", res.Cart.Lines[0].Name)
	assert.Equal(t, int64(12999), res.Cart.Lines[0].Price)
	assert.Equal(t, 1, res.Cart.Lines[0].Quantity)
	assert.Equal(t, 1, events.cartUpdates)
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)
	res, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, 2, res.Cart.Lines[0].Quantity)
}

func TestAddItem_SequentialAddsReachStockThenNotice(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(3), nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := svc.AddItem(ctx, "sess-1", "prod-1")
		require.NoError(t, err)
		assert.Empty(t, res.Notice)
	}

	// The fourth add must observe the stored quantity of 3 and refuse.
	res, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cart.Lines[0].Quantity)
	assert.Equal(t, "Sorry, only 3 items available in stock.", res.Notice)
}

func TestAddItem_OutOfStock(t *testing.T) {
	svc, products, carts, events := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(0), nil)

	res, err := svc.AddItem(context.Background(), "sess-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, res.Cart.IsEmpty())
	assert.Equal(t, "Sorry, this item is out of stock.", res.Notice)
	assert.Contains(t, events.notices, "Sorry, this item is out of stock.")

	// A blocked add must not persist anything.
	_, err = carts.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	res, err := svc.AddItem(context.Background(), "sess-1", "missing")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateQuantity_SetsWithinStock(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	res, err := svc.UpdateQuantity(ctx, "sess-1", "prod-1", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Notice)
	assert.Equal(t, 10, res.Cart.Lines[0].Quantity)
}

func TestUpdateQuantity_ClampsToStock(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	res, err := svc.UpdateQuantity(ctx, "sess-1", "prod-1", 11)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Cart.Lines[0].Quantity)
	assert.Equal(t, "Sorry, only 10 items available in stock.", res.Notice)
}

func TestUpdateQuantity_RejectsBelowOne(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, "sess-1", "prod-1", 3)
	require.NoError(t, err)

	res, err := svc.UpdateQuantity(ctx, "sess-1", "prod-1", 0)
	require.NoError(t, err)
	assert.Empty(t, res.Notice)
	// The line survives with its previous quantity; it is not removed.
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, 3, res.Cart.Lines[0].Quantity)
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	res, err := svc.UpdateQuantity(context.Background(), "sess-1", "prod-1", 2)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveLine(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	res, err := svc.RemoveLine(ctx, "sess-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, res.Cart.IsEmpty())
}

func TestRemoveLine_AbsentIsNoOp(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	res, err := svc.RemoveLine(ctx, "sess-1", "other")
	require.NoError(t, err)
	require.Len(t, res.Cart.Lines, 1)
	assert.Equal(t, "prod-1", res.Cart.Lines[0].ProductID)
}

func TestClear(t *testing.T) {
	svc, products, carts, events := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	_, err := svc.AddItem(ctx, "sess-1", "prod-1")
	require.NoError(t, err)

	res, err := svc.Clear(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, res.Cart.IsEmpty())
	assert.Contains(t, events.cleared, "sess-1")

	_, err = carts.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubtotal_AfterMutations(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	products.On("GetByID", mock.Anything, "prod-1").Return(headphones(10), nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(ctx, "sess-1", "prod-1")
		require.NoError(t, err)
	}

	cart, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	// 129.99 × 3 = 389.97
	assert.Equal(t, int64(38997), cart.Subtotal())
}
