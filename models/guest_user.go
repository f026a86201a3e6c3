package models

import "time"

// GuestUser is an anonymous shopper identity. Carts and orders always carry a
// concrete user id string; anonymous sessions get one of these instead of a
// NULL user reference.
type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
