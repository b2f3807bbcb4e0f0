package models

import "gorm.io/gorm"

// Customer is the persistent profile for one WhatsApp contact. Fields are
// collected independently during the conversation and survive across
// sessions; they are overwritten but never deleted.
type Customer struct {
	gorm.Model
	Phone string `json:"phone" gorm:"uniqueIndex"`
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}
