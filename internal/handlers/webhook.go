package handlers

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/scaladei/vinobot-backend/internal/services"
)

// WebhookHandler handles WhatsApp Cloud API webhook requests
type WebhookHandler struct {
	engine *services.ConversationEngine
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(engine *services.ConversationEngine) *WebhookHandler {
	return &WebhookHandler{engine: engine}
}

// VerifyWebhook answers Meta's GET subscription handshake
func (h *WebhookHandler) VerifyWebhook(c *fiber.Ctx) error {
	verifyToken := os.Getenv("WA_VERIFY_TOKEN")
	if verifyToken == "" {
		verifyToken = "verify_me"
	}

	if c.Query("hub.mode") == "subscribe" && c.Query("hub.verify_token") == verifyToken {
		return c.SendString(c.Query("hub.challenge"))
	}
	return c.Status(fiber.StatusForbidden).SendString("forbidden")
}

// HandleWebhook processes incoming WhatsApp Cloud API events. The webhook
// is always acknowledged with 200: malformed payloads are no-ops and
// processing faults are logged, so Meta never retries into a storm.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload CloudAPIWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.JSON(fiber.Map{"ok": true})
	}

	msg := payload.FirstMessage()
	if msg == nil {
		return c.JSON(fiber.Map{"ok": true})
	}

	log.Printf("📱 WhatsApp %s message from %s", msg.Type, msg.From)

	if err := h.engine.HandleMessage(msg); err != nil {
		log.Printf("❌ Error processing message from %s: %v", msg.From, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// CloudAPIWebhookPayload mirrors the nested structure Meta delivers.
type CloudAPIWebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []cloudAPIMessage `json:"messages"`
				Contacts []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type cloudAPIMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive struct {
		Type        string `json:"type"`
		ButtonReply struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// FirstMessage extracts the first message of the delivery batch, the only
// one that gets processed. Returns nil for status-only deliveries.
func (p *CloudAPIWebhookPayload) FirstMessage() *services.InboundMessage {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	value := p.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil
	}

	raw := value.Messages[0]
	msg := &services.InboundMessage{
		From: raw.From,
		Type: raw.Type,
	}
	if raw.Type == services.MessageTypeText {
		msg.Text = raw.Text.Body
	}
	if raw.Type == services.MessageTypeInteractive && raw.Interactive.Type == "button_reply" {
		msg.ButtonID = raw.Interactive.ButtonReply.ID
	}
	if len(value.Contacts) > 0 {
		msg.ProfileName = value.Contacts[0].Profile.Name
	}
	return msg
}

// TestWebhookPayload injects a plain text message without going through Meta
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test messages (for development)
func (h *WebhookHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook received from %s: %s", payload.From, payload.Message)

	err := h.engine.HandleMessage(&services.InboundMessage{
		From: payload.From,
		Type: services.MessageTypeText,
		Text: payload.Message,
	})
	if err != nil {
		log.Printf("Error processing test message: %v", err)
		return c.JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"success": true})
}
