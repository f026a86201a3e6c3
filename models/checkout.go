package models

import "time"

// CheckoutSession snapshots the cart at the moment the shopper is sent to the
// provider's hosted payment page. Confirmation builds the order from this
// snapshot rather than re-reading the cart, so edits made while the shopper is
// on the payment page cannot change what gets recorded. The snapshot is deleted
// in the same transaction that creates the order, which also makes a replayed
// confirmation fail instead of creating a second order.
type CheckoutSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"uniqueIndex;not null" json:"session_id"`
	UserID    string         `gorm:"index;not null" json:"user_id"`
	Amount    float64        `json:"amount"`
	Currency  string         `json:"currency"`
	Lines     []CheckoutLine `gorm:"foreignKey:CheckoutSessionID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
}

type CheckoutLine struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	CheckoutSessionID uint    `gorm:"index" json:"checkout_session_id"`
	ProductID         uint    `json:"product_id"`
	ProductName       string  `json:"product_name"`
	UnitPrice         float64 `json:"unit_price"`
	Quantity          int     `json:"quantity"`
}
