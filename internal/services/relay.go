package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// PaidOrderNotification is the payload posted downstream when an order is
// paid. The field names match what the fulfillment webhook expects.
type PaidOrderNotification struct {
	Name      string  `json:"nombre"`
	Phone     string  `json:"telefono"`
	Email     string  `json:"correo"`
	City      string  `json:"ciudad"`
	Wine      string  `json:"vino"` // display name, not the canonical key
	Qty       int     `json:"cantidad"`
	Total     float64 `json:"total"`
	OrderID   uint    `json:"pedido_id"`
	ProofType string  `json:"tipo_comprobante"`
}

// OrderNotifier delivers paid-order notifications to the downstream relay.
// Delivery is best-effort: the order is already marked paid when this runs.
type OrderNotifier interface {
	NotifyPaid(n *PaidOrderNotification) error
}

// RelayService posts paid-order notifications to a Make-style webhook.
type RelayService struct {
	client     *http.Client
	webhookURL string
}

// NewRelayService creates a new relay client from MAKE_WEBHOOK_URL
func NewRelayService() *RelayService {
	return &RelayService{
		client:     &http.Client{Timeout: 30 * time.Second},
		webhookURL: os.Getenv("MAKE_WEBHOOK_URL"),
	}
}

// NotifyPaid posts the notification payload. A missing webhook URL is a
// configured no-op, not an error.
func (r *RelayService) NotifyPaid(n *PaidOrderNotification) error {
	if r.webhookURL == "" {
		log.Println("⚠️  MAKE_WEBHOOK_URL not set - skipping paid-order notification")
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	resp, err := r.client.Post(r.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, snippet)
	}

	log.Printf("✅ Paid-order notification sent for order %d", n.OrderID)
	return nil
}
