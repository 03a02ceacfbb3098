package domain

import "time"

// Receipt summarizes a completed checkout. Lines are the cart lines as they
// stood at checkout time, priced at their snapshot prices.
type Receipt struct {
	OrderID     string    `json:"order_id"`
	SessionID   string    `json:"session_id"`
	Lines       []Line    `json:"lines"`
	Currency    string    `json:"currency"`
	Subtotal    int64     `json:"subtotal"`
	Total       int64     `json:"total"`
	ItemCount   int       `json:"item_count"`
	CompletedAt time.Time `json:"completed_at"`
}
