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
	"unicode/utf8"
)

// WhatsApp Cloud API limits
const (
	maxTextLength       = 4096
	maxButtonBodyLength = 1024
	maxButtons          = 3
)

// Button is one reply button in an interactive message.
type Button struct {
	ID    string
	Label string
}

// MessageSender sends WhatsApp messages to a contact. Sends are best-effort
// from the engine's perspective: failures are logged and never abort a
// state transition.
type MessageSender interface {
	SendText(to, body string) error
	SendButtons(to, body string, buttons []Button) error
}

// WhatsAppService talks to the WhatsApp Cloud API (graph.facebook.com).
type WhatsAppService struct {
	client  *http.Client
	baseURL string
	token   string
	phoneID string
}

// NewWhatsAppService creates a new WhatsApp Cloud API client
func NewWhatsAppService() (*WhatsAppService, error) {
	token := os.Getenv("WA_TOKEN")
	phoneID := os.Getenv("WA_PHONE_ID")

	if token == "" || phoneID == "" {
		return nil, fmt.Errorf("missing WhatsApp credentials in environment variables")
	}

	return &WhatsAppService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://graph.facebook.com/v20.0",
		token:   token,
		phoneID: phoneID,
	}, nil
}

// SendText sends a plain text message
func (w *WhatsAppService) SendText(to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": truncate(body, maxTextLength),
		},
	}
	if err := w.post(payload); err != nil {
		log.Printf("❌ Failed to send WhatsApp message to %s: %v", to, err)
		return err
	}
	log.Printf("✅ WhatsApp message sent to %s", to)
	return nil
}

// SendButtons sends an interactive message with up to three reply buttons
func (w *WhatsAppService) SendButtons(to, body string, buttons []Button) error {
	if len(buttons) > maxButtons {
		buttons = buttons[:maxButtons]
	}
	btns := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		btns = append(btns, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    b.ID,
				"title": b.Label,
			},
		})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "button",
			"body": map[string]string{
				"text": truncate(body, maxButtonBodyLength),
			},
			"action": map[string]interface{}{
				"buttons": btns,
			},
		},
	}
	if err := w.post(payload); err != nil {
		log.Printf("❌ Failed to send WhatsApp buttons to %s: %v", to, err)
		return err
	}
	log.Printf("✅ WhatsApp buttons sent to %s", to)
	return nil
}

func (w *WhatsAppService) post(payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cloud api returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// truncate cuts s to max bytes without splitting a multibyte character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
