package catalog

import "github.com/imrishuroy/go-salon-bookings/internal/cart"

// Entry is a service or product as served by the catalog API.
type Entry struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Slug        string   `json:"slug"`
	Price       float64  `json:"price" validate:"gte=0"`
	Duration    string   `json:"duration"`
	Category    string   `json:"category"`
	Images      []string `json:"images,omitempty"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
}

// LineItem keeps the fields a cart line needs and drops the rest.
// Quantity is left at zero; the cart sets it on add.
func (e Entry) LineItem() cart.LineItem {
	return cart.LineItem{
		ID:       e.ID,
		Name:     e.Name,
		Slug:     e.Slug,
		Price:    e.Price,
		Duration: e.Duration,
		Category: e.Category,
	}
}
