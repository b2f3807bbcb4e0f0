package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/scaladei/vinobot-backend/database"
	"github.com/scaladei/vinobot-backend/internal/catalog"
	"github.com/scaladei/vinobot-backend/internal/jobs"
	"github.com/scaladei/vinobot-backend/internal/models"
	"github.com/scaladei/vinobot-backend/internal/routes"
	"github.com/scaladei/vinobot-backend/internal/services"
	"github.com/scaladei/vinobot-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}

		log.Printf("🔍 WA_TOKEN exists: %v", os.Getenv("WA_TOKEN") != "")
		log.Printf("🔍 WA_PHONE_ID: %s", os.Getenv("WA_PHONE_ID"))
		log.Printf("🔍 MAKE_WEBHOOK_URL exists: %v", os.Getenv("MAKE_WEBHOOK_URL") != "")
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Session{},
			&models.Customer{},
			&models.Order{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Initialize WhatsApp Cloud API client
	whatsappService, err := services.NewWhatsAppService()
	if err != nil {
		log.Fatal("Failed to initialize WhatsApp service:", err)
	}
	log.Println("✅ WhatsApp service initialized")

	// Initialize the conversation engine and its collaborators
	relayService := services.NewRelayService()
	engine := services.NewConversationEngine(
		store,
		whatsappService,
		relayService,
		catalog.Default(),
		services.PaymentDetailsFromEnv(),
	)

	// Start the session expiry sweeper
	expiryJob := jobs.NewExpiryJob(store)
	expiryJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "VinoBot Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with storage status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "VinoBot Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var sessionCount, customerCount, orderCount int64
			database.DB.Model(&models.Session{}).Count(&sessionCount)
			database.DB.Model(&models.Customer{}).Count(&customerCount)
			database.DB.Model(&models.Order{}).Count(&orderCount)

			response["database"] = fiber.Map{
				"status":    dbStatus,
				"sessions":  sessionCount,
				"customers": customerCount,
				"orders":    orderCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
				"whatsapp": os.Getenv("WA_TOKEN") != "",
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, engine)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping expiry sweeper...")
		expiryJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 VinoBot Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 WhatsApp: %s", getWhatsAppStatus())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getWhatsAppStatus() string {
	if os.Getenv("WA_TOKEN") == "" {
		return "Not configured"
	}
	return "Configured"
}
