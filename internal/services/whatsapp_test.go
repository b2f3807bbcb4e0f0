package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newRecordingServer(t *testing.T, status int) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	captured := make(map[string]interface{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newTestWhatsApp(baseURL string) *WhatsAppService {
	return &WhatsAppService{
		client:  &http.Client{Timeout: time.Second},
		baseURL: baseURL,
		token:   "test-token",
		phoneID: "12345",
	}
}

func TestSendTextTruncates(t *testing.T) {
	srv, captured := newRecordingServer(t, http.StatusOK)
	w := newTestWhatsApp(srv.URL)

	long := strings.Repeat("a", maxTextLength+100)
	if err := w.SendText("5215550001", long); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	text := (*captured)["text"].(map[string]interface{})
	if got := len(text["body"].(string)); got != maxTextLength {
		t.Errorf("body length = %d, want %d", got, maxTextLength)
	}
}

func TestSendButtonsCapsAtThree(t *testing.T) {
	srv, captured := newRecordingServer(t, http.StatusOK)
	w := newTestWhatsApp(srv.URL)

	err := w.SendButtons("5215550001", "elige", []Button{
		{ID: "a", Label: "A"}, {ID: "b", Label: "B"},
		{ID: "c", Label: "C"}, {ID: "d", Label: "D"},
	})
	if err != nil {
		t.Fatalf("SendButtons failed: %v", err)
	}

	interactive := (*captured)["interactive"].(map[string]interface{})
	action := interactive["action"].(map[string]interface{})
	buttons := action["buttons"].([]interface{})
	if len(buttons) != maxButtons {
		t.Errorf("buttons = %d, want %d", len(buttons), maxButtons)
	}
}

func TestSendTextSurfacesAPIError(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadRequest)
	w := newTestWhatsApp(srv.URL)

	if err := w.SendText("5215550001", "hola"); err == nil {
		t.Error("expected error on 400 response")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// "í" is two bytes; cutting in the middle must back off
	s := "aí"
	if got := truncate(s, 2); got != "a" {
		t.Errorf("truncate(%q, 2) = %q, want %q", s, got, "a")
	}
	if got := truncate(s, 3); got != s {
		t.Errorf("truncate(%q, 3) = %q, want full string", s, got)
	}
}
