package domain

// User Model
type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`                 // Primary key
	Username string  `gorm:"unique;not null" json:"username"`      // Unique username
	Password string  `gorm:"not null" json:"-"`                    // Hashed password, never serialized
	Orders   []Order `gorm:"constraint:OnDelete:CASCADE" json:"-"` // Orders placed by this user
}
