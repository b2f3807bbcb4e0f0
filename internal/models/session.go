package models

import (
	"time"

	"gorm.io/gorm"
)

// Session states. Every transition in the conversation engine assigns
// one of these values and nothing else.
const (
	StateAskCity         = "ask_city"
	StateMenu            = "menu"
	StateAskName         = "ask_name"
	StateAskEmail        = "ask_email"
	StateAskWine         = "ask_wine"
	StateAskQty          = "ask_qty"
	StateConfirming      = "confirming"
	StateAwaitingPayment = "awaiting_payment"
	StateClosed          = "closed"
)

// Session stores the conversation progress for one WhatsApp contact
type Session struct {
	gorm.Model
	Phone     string     `json:"phone" gorm:"uniqueIndex"`
	State     string     `json:"state"`
	City      string     `json:"city"`
	Wine      string     `json:"wine"` // canonical catalog key
	Qty       int        `json:"qty"`
	LastMsgAt time.Time  `json:"last_msg_at"`
	CloseBy   *time.Time `json:"close_by"` // nil means no deadline is running
}

// Expired reports whether the session's deadline has passed.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.CloseBy == nil {
		return false
	}
	return !now.Before(*s.CloseBy)
}
