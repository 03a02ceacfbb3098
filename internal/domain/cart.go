package domain

import "time"

// Line is one product entry in the cart. Name, Price, and ImageURL are a
// snapshot of the product taken when the line was created; totals are always
// computed from the snapshot price, never from a live catalog re-read.
type Line struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Total returns price × quantity for this line (in cents).
func (l *Line) Total() int64 {
	return l.Price * int64(l.Quantity)
}

// Cart is the per-session shopping cart: an ordered collection of lines with
// at most one line per product.
type Cart struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Subtotal sums price × quantity over all lines using snapshot prices.
// It is recomputed on every call so it can never go stale against the lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for i := range c.Lines {
		total += c.Lines[i].Total()
	}
	return total
}

// Total returns the amount due. Shipping is free, so it equals the subtotal.
func (c *Cart) Total() int64 {
	return c.Subtotal()
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Lines {
		count += c.Lines[i].Quantity
	}
	return count
}

// FindLine returns the index of the line for the given product, or -1.
func (c *Cart) FindLine(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
