package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "prod-1")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "product with id prod-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("quantity must be positive")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCartEmpty(t *testing.T) {
	err := CartEmpty()

	assert.Equal(t, "CART_EMPTY", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutFailed_WrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := CheckoutFailed(cause)

	assert.Equal(t, "CHECKOUT_FAILED", err.Code)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.ErrorIs(t, err, cause)
}

func TestAppError_Error(t *testing.T) {
	err := &AppError{Code: "X", Message: "boom"}
	assert.Equal(t, "X: boom", err.Error())

	wrapped := &AppError{Code: "X", Message: "boom", Err: stderrors.New("inner")}
	assert.Equal(t, "X: boom: inner", wrapped.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("cart", "s-1"), http.StatusNotFound},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel cart empty", ErrCartEmpty, http.StatusConflict},
		{"sentinel checkout failed", ErrCheckoutFailed, http.StatusBadGateway},
		{"wrapped sentinel", Wrap(ErrInvalidInput, "add item"), http.StatusBadRequest},
		{"unknown", stderrors.New("weird"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
