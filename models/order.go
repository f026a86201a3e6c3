package models

import "time"

// Order is an immutable record of a completed purchase. Rows are created
// exactly once at payment confirmation and never updated.
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	OrderRef     string      `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID       string      `gorm:"index" json:"user_id"`
	CustomerName string      `json:"customer_name"`
	Email        string      `json:"email"`
	TotalAmount  float64     `json:"total_amount"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}
