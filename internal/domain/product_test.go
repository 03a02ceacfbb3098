package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInStock(t *testing.T) {
	p := &Product{ID: "1", Stock: 10}
	assert.True(t, p.InStock())

	p.Stock = 0
	assert.False(t, p.InStock())
}
