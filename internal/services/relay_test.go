package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotifyPaidPostsPayload(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer srv.Close()

	relay := &RelayService{
		client:     &http.Client{Timeout: time.Second},
		webhookURL: srv.URL,
	}
	err := relay.NotifyPaid(&PaidOrderNotification{
		Name:      "Juan Pérez",
		Phone:     "5215550001",
		Email:     "juan@x.com",
		City:      "cdmx",
		Wine:      "Vino Tinto Scala – Tempranillo",
		Qty:       2,
		Total:     580,
		OrderID:   7,
		ProofType: "text",
	})
	if err != nil {
		t.Fatalf("NotifyPaid failed: %v", err)
	}

	// The downstream webhook expects the Spanish field names
	if captured["nombre"] != "Juan Pérez" || captured["pedido_id"] != float64(7) {
		t.Errorf("payload = %+v", captured)
	}
	if captured["tipo_comprobante"] != "text" || captured["total"] != float64(580) {
		t.Errorf("payload = %+v", captured)
	}
}

func TestNotifyPaidWithoutURLIsNoOp(t *testing.T) {
	relay := &RelayService{client: &http.Client{Timeout: time.Second}}
	if err := relay.NotifyPaid(&PaidOrderNotification{OrderID: 1}); err != nil {
		t.Errorf("missing URL should be a no-op, got %v", err)
	}
}

func TestNotifyPaidSurfacesRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	relay := &RelayService{
		client:     &http.Client{Timeout: time.Second},
		webhookURL: srv.URL,
	}
	if err := relay.NotifyPaid(&PaidOrderNotification{OrderID: 1}); err == nil {
		t.Error("expected error on 500 response")
	}
}
