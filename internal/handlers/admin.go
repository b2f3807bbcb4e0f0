package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scaladei/vinobot-backend/internal/models"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

// AdminHandler exposes read-only views over orders and customers
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// ListOrders returns all orders, optionally filtered by ?status=
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	status := c.Query("status")

	var (
		orders []*models.Order
		err    error
	)
	if status != "" {
		orders, err = h.store.GetOrdersByStatus(status)
	} else {
		orders, err = h.store.GetAllOrders()
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load orders",
		})
	}

	return c.JSON(fiber.Map{
		"count":  len(orders),
		"orders": orders,
	})
}

// ListCustomers returns every customer profile collected so far
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.store.GetAllCustomers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load customers",
		})
	}

	return c.JSON(fiber.Map{
		"count":     len(customers),
		"customers": customers,
	})
}
