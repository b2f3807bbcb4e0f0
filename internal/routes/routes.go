package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/scaladei/vinobot-backend/internal/handlers"
	"github.com/scaladei/vinobot-backend/internal/middleware"
	"github.com/scaladei/vinobot-backend/internal/services"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, engine *services.ConversationEngine) {
	webhookHandler := handlers.NewWebhookHandler(engine)
	adminHandler := handlers.NewAdminHandler(store)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/wa")
	webhooks.Get("/webhook", webhookHandler.VerifyWebhook)

	// ENVIRONMENT-AWARE VALIDATION
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: skip signature validation for ngrok
		webhooks.Post("/webhook", webhookHandler.HandleWebhook)
		if os.Getenv("ENVIRONMENT") == "development" {
			log.Println("⚠️  WhatsApp webhook validation DISABLED for development")
		}
	} else {
		// Production: validate X-Hub-Signature-256
		webhooks.Post("/webhook", middleware.ValidateWebhookSignature(), webhookHandler.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	app.Post("/test/whatsapp", webhookHandler.HandleTestWebhook)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin")
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/customers", adminHandler.ListCustomers)
}
