package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/scaladei/vinobot-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local
// development (USE_MEMORY_STORE=true), not for production.
type MemoryStore struct {
	sessions  map[string]*models.Session
	customers map[string]*models.Customer
	orders    map[uint]*models.Order

	// Mutexes for thread safety
	sessionMu  sync.RWMutex
	customerMu sync.RWMutex
	orderMu    sync.RWMutex

	orderCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*models.Session),
		customers: make(map[string]*models.Customer),
		orders:    make(map[uint]*models.Order),
	}
}

// Session operations

func (m *MemoryStore) EnsureSession(phone string) (*models.Session, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	sess, exists := m.sessions[phone]
	if !exists {
		sess = &models.Session{
			Phone: phone,
			State: models.StateAskCity,
		}
		sess.ID = uint(len(m.sessions) + 1)
		sess.CreatedAt = time.Now().UTC()
		m.sessions[phone] = sess
	}
	sess.LastMsgAt = time.Now().UTC()
	sess.UpdatedAt = time.Now().UTC()

	copied := *sess
	return &copied, nil
}

func (m *MemoryStore) GetSession(phone string) (*models.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	sess, exists := m.sessions[phone]
	if !exists {
		return nil, fmt.Errorf("session not found")
	}
	copied := *sess
	return &copied, nil
}

func (m *MemoryStore) UpdateSession(phone string, fields map[string]interface{}) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	sess, exists := m.sessions[phone]
	if !exists {
		return fmt.Errorf("session not found")
	}

	for key, value := range fields {
		switch key {
		case "state":
			sess.State = value.(string)
		case "city":
			sess.City = value.(string)
		case "wine":
			sess.Wine = value.(string)
		case "qty":
			sess.Qty = value.(int)
		case "last_msg_at":
			sess.LastMsgAt = value.(time.Time)
		case "close_by":
			if value == nil {
				sess.CloseBy = nil
			} else {
				sess.CloseBy = value.(*time.Time)
			}
		default:
			return fmt.Errorf("unknown session field: %s", key)
		}
	}
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) GetExpiredSessions(now time.Time) ([]*models.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	var expired []*models.Session
	for _, sess := range m.sessions {
		if sess.State != models.StateClosed && sess.Expired(now) {
			copied := *sess
			expired = append(expired, &copied)
		}
	}
	return expired, nil
}

// Customer operations

func (m *MemoryStore) EnsureCustomer(phone, name string) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[phone]; exists {
		return nil
	}
	cust := &models.Customer{
		Phone: phone,
		Name:  name,
	}
	cust.ID = uint(len(m.customers) + 1)
	cust.CreatedAt = time.Now().UTC()
	m.customers[phone] = cust
	return nil
}

func (m *MemoryStore) GetCustomer(phone string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	cust, exists := m.customers[phone]
	if !exists {
		return nil, fmt.Errorf("customer not found")
	}
	copied := *cust
	return &copied, nil
}

func (m *MemoryStore) UpdateCustomerField(phone, field, value string) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	cust, exists := m.customers[phone]
	if !exists {
		return fmt.Errorf("customer not found")
	}

	switch field {
	case "name":
		cust.Name = value
	case "email":
		cust.Email = value
	case "city":
		cust.City = value
	default:
		return fmt.Errorf("unknown customer field: %s", field)
	}
	cust.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) GetAllCustomers() ([]*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customers := make([]*models.Customer, 0, len(m.customers))
	for _, cust := range m.customers {
		copied := *cust
		customers = append(customers, &copied)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

// Order operations

func (m *MemoryStore) CreateOrder(order *models.Order) (*models.Order, error) {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	m.orderCounter++
	order.ID = m.orderCounter
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	copied := *order
	m.orders[order.ID] = &copied
	return order, nil
}

func (m *MemoryStore) MarkOrderPaid(orderID uint) error {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	order, exists := m.orders[orderID]
	if !exists {
		return fmt.Errorf("order not found")
	}
	if order.Status != models.OrderStatusAwaitingPayment {
		return fmt.Errorf("order %d is not awaiting payment", orderID)
	}
	order.Status = models.OrderStatusPaid
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) LatestAwaitingPayment(phone string) (*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	var latest *models.Order
	for _, order := range m.orders {
		if order.Phone != phone || order.Status != models.OrderStatusAwaitingPayment {
			continue
		}
		if latest == nil || order.ID > latest.ID {
			latest = order
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (m *MemoryStore) GetOrdersByStatus(status string) ([]*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	var orders []*models.Order
	for _, order := range m.orders {
		if order.Status == status {
			copied := *order
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *MemoryStore) GetAllOrders() ([]*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	orders := make([]*models.Order, 0, len(m.orders))
	for _, order := range m.orders {
		copied := *order
		orders = append(orders, &copied)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}
