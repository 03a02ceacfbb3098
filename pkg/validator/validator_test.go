package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addLineRequest struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"gte=1"`
}

func TestValidate_Success(t *testing.T) {
	req := addLineRequest{ProductID: "prod-1", Quantity: 1}
	assert.NoError(t, Validate(req))
}

func TestValidate_MissingRequired(t *testing.T) {
	req := addLineRequest{Quantity: 1}
	err := Validate(req)

	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["ProductID"])
	assert.Contains(t, valErr.Error(), "field 'ProductID' is required")
}

func TestValidate_MultipleFailures(t *testing.T) {
	req := addLineRequest{Quantity: 0}
	err := Validate(req)

	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Len(t, fields, 2)
	assert.Equal(t, "must be greater than or equal to 1", fields["Quantity"])
}
