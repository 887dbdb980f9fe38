package models

import "time"

// MaxCartLines caps the number of distinct product lines in a cart.
const MaxCartLines = 20

// CartItem carries the product's name and price as seen at the last cart
// mutation. These are advisory only; checkout re-resolves the product and
// snapshots authoritative values.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Cart is one per user, created lazily on first add and deleted on
// successful checkout. TotalQuantity and Total are derived and must be
// recomputed via Recalculate on every mutation.
type Cart struct {
	UserID        string     `json:"user_id"`
	Items         []CartItem `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	Total         int        `json:"total"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Recalculate recomputes the derived totals from the line items. Every
// mutating operation calls it before the cart is saved.
func (c *Cart) Recalculate() {
	quantity, total := 0, 0
	for _, item := range c.Items {
		quantity += item.Quantity
		total += item.Price * item.Quantity
	}
	c.TotalQuantity = quantity
	c.Total = total
}
