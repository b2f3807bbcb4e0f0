package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newSignedApp() *fiber.App {
	app := fiber.New()
	app.Post("/wa/webhook", ValidateWebhookSignature(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestValidSignaturePasses(t *testing.T) {
	t.Setenv("WA_APP_SECRET", "topsecret")
	app := newSignedApp()

	body := `{"entry":[]}`
	req := httptest.NewRequest("POST", "/wa/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", calculateSignature("topsecret", []byte(body)))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestInvalidSignatureRejected(t *testing.T) {
	t.Setenv("WA_APP_SECRET", "topsecret")
	app := newSignedApp()

	req := httptest.NewRequest("POST", "/wa/webhook", strings.NewReader(`{"entry":[]}`))
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestMissingSignatureRejected(t *testing.T) {
	t.Setenv("WA_APP_SECRET", "topsecret")
	app := newSignedApp()

	req := httptest.NewRequest("POST", "/wa/webhook", strings.NewReader(`{"entry":[]}`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
