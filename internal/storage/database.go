package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/scaladei/vinobot-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Session operations

func (s *DatabaseStore) EnsureSession(phone string) (*models.Session, error) {
	var sess models.Session
	err := s.db.
		Where(models.Session{Phone: phone}).
		Attrs(models.Session{State: models.StateAskCity}).
		FirstOrCreate(&sess).Error
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.db.Model(&sess).Update("last_msg_at", now).Error; err != nil {
		return nil, err
	}
	sess.LastMsgAt = now
	return &sess, nil
}

func (s *DatabaseStore) GetSession(phone string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.Where("phone = ?", phone).First(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *DatabaseStore) UpdateSession(phone string, fields map[string]interface{}) error {
	return s.db.Model(&models.Session{}).
		Where("phone = ?", phone).
		Updates(fields).Error
}

func (s *DatabaseStore) GetExpiredSessions(now time.Time) ([]*models.Session, error) {
	var sessions []*models.Session
	err := s.db.
		Where("close_by IS NOT NULL AND close_by <= ? AND state <> ?", now, models.StateClosed).
		Find(&sessions).Error
	return sessions, err
}

// Customer operations

func (s *DatabaseStore) EnsureCustomer(phone, name string) error {
	var cust models.Customer
	return s.db.
		Where(models.Customer{Phone: phone}).
		Attrs(models.Customer{Name: name}).
		FirstOrCreate(&cust).Error
}

func (s *DatabaseStore) GetCustomer(phone string) (*models.Customer, error) {
	var cust models.Customer
	if err := s.db.Where("phone = ?", phone).First(&cust).Error; err != nil {
		return nil, err
	}
	return &cust, nil
}

func (s *DatabaseStore) UpdateCustomerField(phone, field, value string) error {
	return s.db.Model(&models.Customer{}).
		Where("phone = ?", phone).
		Update(field, value).Error
}

func (s *DatabaseStore) GetAllCustomers() ([]*models.Customer, error) {
	var customers []*models.Customer
	err := s.db.Order("id").Find(&customers).Error
	return customers, err
}

// Order operations

func (s *DatabaseStore) CreateOrder(order *models.Order) (*models.Order, error) {
	if err := s.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (s *DatabaseStore) MarkOrderPaid(orderID uint) error {
	return s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusAwaitingPayment).
		Update("status", models.OrderStatusPaid).Error
}

func (s *DatabaseStore) LatestAwaitingPayment(phone string) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Where("phone = ? AND status = ?", phone, models.OrderStatusAwaitingPayment).
		Order("id DESC").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *DatabaseStore) GetOrdersByStatus(status string) ([]*models.Order, error) {
	var orders []*models.Order
	err := s.db.Where("status = ?", status).Order("id").Find(&orders).Error
	return orders, err
}

func (s *DatabaseStore) GetAllOrders() ([]*models.Order, error) {
	var orders []*models.Order
	err := s.db.Order("id").Find(&orders).Error
	return orders, err
}
