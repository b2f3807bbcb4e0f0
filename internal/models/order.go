package models

import "gorm.io/gorm"

// Order status constants
const (
	OrderStatusCollecting      = "collecting"
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPaid            = "paid"
)

// Order is an append-only purchase record. It is created when the customer
// confirms the summary, with status awaiting_payment, and mutated exactly
// once when the proof of payment arrives. Orders outlive sessions.
type Order struct {
	gorm.Model
	Phone  string  `json:"phone" gorm:"index"`
	City   string  `json:"city"`
	Wine   string  `json:"wine"` // canonical catalog key
	Qty    int     `json:"qty"`
	Total  float64 `json:"total"`
	Status string  `json:"status" gorm:"index"`
}
