package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/scaladei/vinobot-backend/internal/catalog"
	"github.com/scaladei/vinobot-backend/internal/models"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

// Waiting windows. Data-collection steps get 30 minutes; payment-related
// steps get 2 hours.
const (
	inputDeadline   = 30 * time.Minute
	paymentDeadline = 2 * time.Hour
)

// Inbound message types as delivered by the webhook.
const (
	MessageTypeText        = "text"
	MessageTypeInteractive = "interactive"
	MessageTypeImage       = "image"
	MessageTypeDocument    = "document"
)

var (
	greetingKeywords = []string{"hola", "menu", "buenas", "start", "inicio"}
	closingKeywords  = []string{"cerrar", "gracias", "listo"}

	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// InboundMessage is one normalized inbound event.
type InboundMessage struct {
	From        string `json:"from"`
	ProfileName string `json:"profile_name"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	ButtonID    string `json:"button_id"`
}

// ConversationEngine drives the ordering conversation. It is stateless
// between events: every decision branches on the persisted session, the
// message type and the message content, in a fixed priority order —
// expiry/closed first, then global shortcuts, then state-specific
// handling, then the fallback.
type ConversationEngine struct {
	store    storage.Store
	sender   MessageSender
	notifier OrderNotifier
	catalog  *catalog.Catalog
	payment  PaymentDetails

	// Per-contact locks serialize concurrent events from the same phone
	// (duplicate webhook deliveries) so a confirmation inserts at most
	// one order. Different contacts process independently.
	contactMu sync.Map // phone -> *sync.Mutex
}

// NewConversationEngine creates the engine with all its collaborators.
func NewConversationEngine(
	store storage.Store,
	sender MessageSender,
	notifier OrderNotifier,
	cat *catalog.Catalog,
	payment PaymentDetails,
) *ConversationEngine {
	return &ConversationEngine{
		store:    store,
		sender:   sender,
		notifier: notifier,
		catalog:  cat,
		payment:  payment,
	}
}

func (e *ConversationEngine) lockContact(phone string) func() {
	v, _ := e.contactMu.LoadOrStore(phone, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// HandleMessage processes one inbound event end to end: upserts the
// customer and session, checks expiry, dispatches, and emits replies.
func (e *ConversationEngine) HandleMessage(msg *InboundMessage) error {
	if msg == nil || msg.From == "" {
		return nil
	}

	unlock := e.lockContact(msg.From)
	defer unlock()

	if err := e.store.EnsureCustomer(msg.From, msg.ProfileName); err != nil {
		return fmt.Errorf("ensure customer: %w", err)
	}
	sess, err := e.store.EnsureSession(msg.From)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	now := time.Now().UTC()
	ntext := ""
	if msg.Type == MessageTypeText {
		ntext = catalog.Normalize(msg.Text)
	}
	greeted := msg.Type == MessageTypeText && containsAny(ntext, greetingKeywords)

	// Expired or closed sessions answer with the restart hint. A greeting
	// is the one input that revives them, falling through to the restart
	// shortcut below.
	if (sess.Expired(now) || sess.State == models.StateClosed) && !greeted {
		e.sendText(msg.From, msgSessionEnded)
		return e.markClosed(msg.From)
	}

	// Global shortcuts override whatever the current state would do.
	if msg.Type == MessageTypeInteractive && msg.ButtonID != "" {
		return e.handleButton(sess, msg)
	}
	if greeted {
		if err := e.store.UpdateSession(msg.From, map[string]interface{}{
			"state":    models.StateAskCity,
			"close_by": nil,
		}); err != nil {
			return fmt.Errorf("restart session: %w", err)
		}
		e.askCity(msg.From)
		return nil
	}
	if msg.Type == MessageTypeText && containsAny(ntext, closingKeywords) {
		if err := e.markClosed(msg.From); err != nil {
			return err
		}
		e.sendText(msg.From, msgClosedByKeyword)
		return nil
	}

	return e.handleState(sess, msg, ntext)
}

// handleButton dispatches interactive button replies. Buttons stay tappable
// in the chat history, so they are honored regardless of the current state.
func (e *ConversationEngine) handleButton(sess *models.Session, msg *InboundMessage) error {
	from := msg.From

	switch msg.ButtonID {
	case "cerrar":
		if err := e.markClosed(from); err != nil {
			return err
		}
		e.sendText(from, msgFarewell)
		return nil

	case "seguir":
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateMenu,
			"close_by": nil,
		}); err != nil {
			return err
		}
		e.showMenu(from)
		return nil

	case "otra":
		e.sendText(from, msgNoDelivery)
		return e.markClosed(from)

	case "cdmx", "qro":
		city := "cdmx"
		display := "CDMX"
		if msg.ButtonID == "qro" {
			city = "queretaro"
			display = "Querétaro"
		}
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateMenu,
			"city":     city,
			"close_by": nil,
		}); err != nil {
			return err
		}
		if err := e.store.UpdateCustomerField(from, "city", city); err != nil {
			log.Printf("⚠️  Failed to store customer city for %s: %v", from, err)
		}
		e.sendText(from, fmt.Sprintf("¡Perfecto! Entregas personales en *%s* 🍷", display))
		e.showMenu(from)
		return nil

	case "caracteristicas":
		e.sendText(from, featuresMsg)
		e.showMenu(from)
		return nil

	case "precios":
		e.sendText(from, pricesMsg)
		e.showMenu(from)
		return nil

	case "comprar":
		if sess.City == "" {
			e.askCity(from)
			return e.store.UpdateSession(from, map[string]interface{}{
				"state":    models.StateAskCity,
				"close_by": nil,
			})
		}
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateAskName,
			"close_by": deadlineIn(inputDeadline),
		}); err != nil {
			return err
		}
		e.sendText(from, msgAskName)
		return nil
	}

	log.Printf("Unknown button payload from %s: %s", from, msg.ButtonID)
	return e.handleState(sess, msg, "")
}

// handleState runs the guided flow for the current state. Cases are
// ordered like the transition table; anything unmatched lands on the
// fallback message without a state change.
func (e *ConversationEngine) handleState(sess *models.Session, msg *InboundMessage, ntext string) error {
	from := msg.From

	switch {
	case sess.State == "" || sess.State == models.StateAskCity:
		e.askCity(from)
		return e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateAskCity,
			"close_by": nil,
		})

	case sess.State == models.StateAskName && msg.Type == MessageTypeText:
		name := strings.TrimSpace(msg.Text)
		if err := e.store.UpdateCustomerField(from, "name", name); err != nil {
			return fmt.Errorf("store name: %w", err)
		}
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateAskEmail,
			"close_by": deadlineIn(inputDeadline),
		}); err != nil {
			return err
		}
		e.sendText(from, msgAskEmail)
		return nil

	case sess.State == models.StateAskEmail && msg.Type == MessageTypeText:
		email := strings.TrimSpace(msg.Text)
		if !emailRe.MatchString(email) {
			e.sendText(from, msgBadEmail)
			return nil
		}
		if err := e.store.UpdateCustomerField(from, "email", email); err != nil {
			return fmt.Errorf("store email: %w", err)
		}
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateAskWine,
			"close_by": deadlineIn(inputDeadline),
		}); err != nil {
			return err
		}
		e.sendText(from, msgAskWine)
		return nil

	case sess.State == models.StateAskWine && msg.Type == MessageTypeText:
		key, ok := e.catalog.Resolve(msg.Text)
		if !ok {
			e.sendText(from, msgWineNotFound)
			return nil
		}
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateAskQty,
			"wine":     key,
			"close_by": deadlineIn(inputDeadline),
		}); err != nil {
			return err
		}
		e.sendText(from, fmt.Sprintf("Anotado: *%s*. ¿Cuántas botellas deseas?", e.catalog.Title(key)))
		return nil

	case sess.State == models.StateAskQty && msg.Type == MessageTypeText:
		qty := catalog.ParseQuantity(msg.Text)
		price, ok := e.catalog.Price(sess.Wine)
		if !ok {
			e.sendText(from, msgWineUnknownKey)
			return nil
		}
		total := float64(qty) * price
		if err := e.store.UpdateSession(from, map[string]interface{}{
			"state":    models.StateConfirming,
			"qty":      qty,
			"close_by": deadlineIn(inputDeadline),
		}); err != nil {
			return err
		}
		e.sendText(from, orderSummary(e.catalog.Title(sess.Wine), qty, total))
		return nil

	case sess.State == models.StateConfirming && msg.Type == MessageTypeText:
		switch {
		case strings.Contains(ntext, "si"):
			return e.confirmOrder(sess, from)
		case strings.Contains(ntext, "no"):
			if err := e.store.UpdateSession(from, map[string]interface{}{
				"state":    models.StateMenu,
				"close_by": nil,
			}); err != nil {
				return err
			}
			e.sendText(from, msgCancelled)
			return nil
		default:
			e.sendText(from, msgConfirmPrompt)
			return nil
		}

	case sess.State == models.StateAwaitingPayment && isProofOfPayment(msg, ntext):
		return e.acceptProof(from, msg.Type)

	case sess.State == models.StateMenu:
		e.showMenu(from)
		return nil
	}

	e.sendText(from, msgFallback)
	return nil
}

// confirmOrder inserts the order and moves the session to awaiting_payment.
// Runs under the per-contact lock, so a duplicate "sí" sees the advanced
// state instead of inserting a second order.
func (e *ConversationEngine) confirmOrder(sess *models.Session, from string) error {
	qty := sess.Qty
	if qty <= 0 {
		qty = 1
	}
	price, _ := e.catalog.Price(sess.Wine)
	total := float64(qty) * price

	order, err := e.store.CreateOrder(&models.Order{
		Phone:  from,
		City:   sess.City,
		Wine:   sess.Wine,
		Qty:    qty,
		Total:  total,
		Status: models.OrderStatusAwaitingPayment,
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	if err := e.store.UpdateSession(from, map[string]interface{}{
		"state":    models.StateAwaitingPayment,
		"close_by": deadlineIn(paymentDeadline),
	}); err != nil {
		return err
	}

	e.sendText(from, fmt.Sprintf(
		"🍷 ¡Excelente! Has confirmado tu pedido de %d %s por un total de $%.0f MXN.\n\n%s",
		qty, e.catalog.Title(sess.Wine), total,
		paymentInstructions(e.payment, total, order.ID),
	))
	return nil
}

// acceptProof marks the latest awaiting-payment order as paid, notifies the
// relay and returns the session to the menu with a fresh payment window.
func (e *ConversationEngine) acceptProof(from, proofType string) error {
	order, err := e.store.LatestAwaitingPayment(from)
	if err != nil {
		return fmt.Errorf("load pending order: %w", err)
	}
	if order != nil {
		if err := e.store.MarkOrderPaid(order.ID); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
	}

	if err := e.store.UpdateSession(from, map[string]interface{}{
		"state":    models.StateMenu,
		"close_by": deadlineIn(paymentDeadline),
	}); err != nil {
		return err
	}

	if order != nil {
		notification := &PaidOrderNotification{
			Phone:     from,
			City:      order.City,
			Wine:      e.catalog.Title(order.Wine),
			Qty:       order.Qty,
			Total:     order.Total,
			OrderID:   order.ID,
			ProofType: proofType,
		}
		if cust, err := e.store.GetCustomer(from); err == nil {
			notification.Name = cust.Name
			notification.Email = cust.Email
			if notification.City == "" {
				notification.City = cust.City
			}
		}
		if err := e.notifier.NotifyPaid(notification); err != nil {
			log.Printf("❌ Failed to relay paid order %d: %v", order.ID, err)
		}
	}

	e.sendText(from, msgProofReceived)
	e.askCloseOrContinue(from)
	return nil
}

func (e *ConversationEngine) markClosed(phone string) error {
	return e.store.UpdateSession(phone, map[string]interface{}{
		"state":    models.StateClosed,
		"close_by": nil,
	})
}

// sendText and sendButtons are fire-and-forget: delivery failures are
// logged, never propagated into the transition outcome.
func (e *ConversationEngine) sendText(to, body string) {
	if err := e.sender.SendText(to, body); err != nil {
		log.Printf("⚠️  Dropped outbound text to %s: %v", to, err)
	}
}

func (e *ConversationEngine) sendButtons(to, body string, buttons []Button) {
	if err := e.sender.SendButtons(to, body, buttons); err != nil {
		log.Printf("⚠️  Dropped outbound buttons to %s: %v", to, err)
	}
}

func isProofOfPayment(msg *InboundMessage, ntext string) bool {
	if msg.Type == MessageTypeImage || msg.Type == MessageTypeDocument {
		return true
	}
	return msg.Type == MessageTypeText && strings.Contains(ntext, "pagado")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func deadlineIn(d time.Duration) *time.Time {
	t := time.Now().UTC().Add(d)
	return &t
}
