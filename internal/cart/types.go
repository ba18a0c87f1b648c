package cart

import "context"

// LineItem is one catalog entry (service or product) plus a quantity.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price * quantity.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// Storage is a string-valued key/value store the cart snapshots into.
// Get reports found=false when the key has never been written.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
