package storage

import (
	"testing"
	"time"

	"github.com/scaladei/vinobot-backend/internal/models"
)

func TestEnsureSessionCreatesWithDefaultState(t *testing.T) {
	m := NewMemoryStore()

	sess, err := m.EnsureSession("5215550001")
	if err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if sess.State != models.StateAskCity {
		t.Errorf("new session state = %q, want %q", sess.State, models.StateAskCity)
	}
	if sess.LastMsgAt.IsZero() {
		t.Error("last_msg_at not set")
	}

	// Second call returns the same record and refreshes activity
	again, err := m.EnsureSession("5215550001")
	if err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if again.ID != sess.ID {
		t.Errorf("EnsureSession created a second record: %d vs %d", again.ID, sess.ID)
	}
}

func TestUpdateSessionPartialPatch(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.EnsureSession("5215550001"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().UTC().Add(30 * time.Minute)
	err := m.UpdateSession("5215550001", map[string]interface{}{
		"state":    models.StateAskQty,
		"wine":     "vino tinto scala tempranillo",
		"close_by": &deadline,
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	// A later patch must not touch fields it does not mention
	err = m.UpdateSession("5215550001", map[string]interface{}{
		"state":    models.StateMenu,
		"close_by": nil,
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	sess, err := m.GetSession("5215550001")
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != models.StateMenu {
		t.Errorf("state = %q, want menu", sess.State)
	}
	if sess.Wine != "vino tinto scala tempranillo" {
		t.Errorf("wine was clobbered: %q", sess.Wine)
	}
	if sess.CloseBy != nil {
		t.Error("close_by not cleared")
	}
}

func TestUpdateSessionUnknownField(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.EnsureSession("5215550001"); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateSession("5215550001", map[string]interface{}{"bogus": 1}); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestMarkOrderPaidGuard(t *testing.T) {
	m := NewMemoryStore()
	order, err := m.CreateOrder(&models.Order{
		Phone:  "5215550001",
		Status: models.OrderStatusAwaitingPayment,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.MarkOrderPaid(order.ID); err != nil {
		t.Fatalf("MarkOrderPaid failed: %v", err)
	}
	// Paid orders are never updated again
	if err := m.MarkOrderPaid(order.ID); err == nil {
		t.Error("expected error marking an already-paid order")
	}
}

func TestLatestAwaitingPayment(t *testing.T) {
	m := NewMemoryStore()

	first, _ := m.CreateOrder(&models.Order{Phone: "a", Status: models.OrderStatusAwaitingPayment})
	second, _ := m.CreateOrder(&models.Order{Phone: "a", Status: models.OrderStatusAwaitingPayment})
	m.CreateOrder(&models.Order{Phone: "b", Status: models.OrderStatusAwaitingPayment})
	if first.ID >= second.ID {
		t.Fatalf("order ids not monotonic: %d, %d", first.ID, second.ID)
	}

	latest, err := m.LatestAwaitingPayment("a")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("latest = %+v, want id %d", latest, second.ID)
	}

	none, err := m.LatestAwaitingPayment("c")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("expected nil for contact without orders, got %+v", none)
	}
}

func TestGetExpiredSessions(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now().UTC()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	m.EnsureSession("expired")
	m.UpdateSession("expired", map[string]interface{}{"close_by": &past})
	m.EnsureSession("live")
	m.UpdateSession("live", map[string]interface{}{"close_by": &future})
	m.EnsureSession("no-deadline")
	m.EnsureSession("already-closed")
	m.UpdateSession("already-closed", map[string]interface{}{
		"state":    models.StateClosed,
		"close_by": &past,
	})

	expired, err := m.GetExpiredSessions(now)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].Phone != "expired" {
		t.Errorf("expired sessions = %+v, want exactly [expired]", expired)
	}
}
