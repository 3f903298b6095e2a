package domain

// Order status values. An order only ever moves pending -> paid.
const (
	OrderStatusPending = "pending" // Order acts as the user's cart
	OrderStatusPaid    = "paid"    // Order has been paid, no further mutation
)

// Order Model. A user's cart is their order with status = pending.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`          // Primary key
	UserID      uint   `gorm:"index;not null" json:"user_id"` // Foreign key to the owning User
	Status      string `gorm:"default:pending" json:"status"` // pending or paid
	ExternalRef string `json:"-"`                             // Reference sent to the payment provider

	// ActiveUserID mirrors UserID while the order is pending and is cleared on
	// payment. The unique index makes "one pending order per user" a database
	// constraint instead of a query convention.
	ActiveUserID *uint `gorm:"uniqueIndex" json:"-"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"` // Line items
}

// Total returns the order total as the sum of quantity times unit price.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.Product.Price
	}
	return total
}

// OrderItem Model. At most one row per (order, product) pair; adding the same
// product again increments Quantity instead of inserting a duplicate.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`                                     // Primary key
	OrderID   uint    `gorm:"not null;uniqueIndex:idx_order_product" json:"order_id"`   // Foreign key to Order
	ProductID uint    `gorm:"not null;uniqueIndex:idx_order_product" json:"product_id"` // Foreign key to Product
	Quantity  int     `gorm:"not null" json:"quantity"`                                 // Quantity, must be >= 1
	Product   Product `json:"product"`                                                  // Preloaded product for display and totals
}

// Subtotal returns quantity times the product's unit price.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Product.Price
}
