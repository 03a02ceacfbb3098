package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/soletrade/storefront/internal/checkout"
	"github.com/soletrade/storefront/pkg/httputil"
	"github.com/soletrade/storefront/pkg/validator"
)

// CheckoutHandler exposes the checkout flow over HTTP.
type CheckoutHandler struct {
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkoutSvc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutSvc, logger: logger}
}

// Checkout handles POST /api/v1/checkout. An empty cart answers 409 so the
// client routes back to the cart view; a failed stock update answers 502 with
// the cart preserved for retry.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var payment checkout.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if err := validator.Validate(payment); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.checkout.Checkout(r.Context(), sessionID(r), payment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data:   res.Receipt,
		Notice: res.Notice,
	})
}
