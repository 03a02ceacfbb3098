package domain

import "time"

// Product represents a purchasable item in the catalog. Prices are stored in
// cents. Stock is the remaining purchasable count; it is mutated only by the
// checkout decrement and the admin stock endpoint, never by cart operations.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
