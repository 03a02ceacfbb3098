package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soletrade/storefront/internal/cart"
	"github.com/soletrade/storefront/internal/domain"
	"github.com/soletrade/storefront/pkg/httputil"
	"github.com/soletrade/storefront/pkg/validator"
)

// CartHandler exposes cart operations over HTTP. All routes require the
// X-Session-ID header.
type CartHandler struct {
	cart   *cart.Service
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cartSvc *cart.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cartSvc, logger: logger}
}

// cartView is the cart response body: the stored cart plus computed totals.
type cartView struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Lines     []domain.Line `json:"lines"`
	Currency  string        `json:"currency"`
	Subtotal  int64         `json:"subtotal"`
	Total     int64         `json:"total"`
	ItemCount int           `json:"item_count"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toCartView(c *domain.Cart) cartView {
	lines := c.Lines
	if lines == nil {
		lines = []domain.Line{}
	}
	return cartView{
		ID:        c.ID,
		SessionID: c.SessionID,
		Lines:     lines,
		Currency:  c.Currency,
		Subtotal:  c.Subtotal(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CartHandler) writeCart(w http.ResponseWriter, res *cart.Result, status int) {
	httputil.WriteJSON(w, status, httputil.Response{
		Data:   toCartView(res.Cart),
		Notice: res.Notice,
	})
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.Get(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: toCartView(c)})
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// AddItem handles POST /api/v1/cart/items: add one unit of a product.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.cart.AddItem(r.Context(), sessionID(r), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, res, http.StatusOK)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}. The quantity is
// clamped to available stock; values below 1 leave the line unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.cart.UpdateQuantity(r.Context(), sessionID(r), productID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, res, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}. Removing an
// absent line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	res, err := h.cart.RemoveLine(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, res, http.StatusOK)
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	res, err := h.cart.Clear(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, res, http.StatusOK)
}
