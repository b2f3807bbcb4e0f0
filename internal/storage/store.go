package storage

import (
	"time"

	"github.com/scaladei/vinobot-backend/internal/models"
)

// Store defines the interface for storage operations
type Store interface {
	// Session operations. EnsureSession creates the record with the
	// default ask_city state when the contact is unseen and always
	// refreshes last_msg_at. UpdateSession is a partial patch: fields not
	// present in the map are left untouched, and a nil close_by clears
	// the deadline.
	EnsureSession(phone string) (*models.Session, error)
	GetSession(phone string) (*models.Session, error)
	UpdateSession(phone string, fields map[string]interface{}) error
	GetExpiredSessions(now time.Time) ([]*models.Session, error)

	// Customer operations
	EnsureCustomer(phone, name string) error
	GetCustomer(phone string) (*models.Customer, error)
	UpdateCustomerField(phone, field, value string) error
	GetAllCustomers() ([]*models.Customer, error)

	// Order operations. MarkOrderPaid only moves awaiting_payment orders;
	// paid orders are never updated again.
	CreateOrder(order *models.Order) (*models.Order, error)
	MarkOrderPaid(orderID uint) error
	LatestAwaitingPayment(phone string) (*models.Order, error)
	GetOrdersByStatus(status string) ([]*models.Order, error)
	GetAllOrders() ([]*models.Order, error)
}
