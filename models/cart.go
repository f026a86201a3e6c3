package models

import "time"

// CartItem is one cart line. The composite unique index keeps a user at
// exactly one line per product; adding the same product again increments
// Quantity instead of inserting a second row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Subtotal requires Product to be preloaded.
func (ci CartItem) Subtotal() float64 {
	return Round2(ci.Product.Price * float64(ci.Quantity))
}
