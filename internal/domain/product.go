package domain

// Product Model
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`  // Primary key
	Name        string  `gorm:"not null" json:"name"`  // Product name
	Description string  `json:"description"`           // Free-form description
	Price       float64 `gorm:"not null" json:"price"` // Unit price, must be >= 0
}
