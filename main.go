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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/CasaWayra/wayra-backend/database"
	"github.com/CasaWayra/wayra-backend/internal/config"
	"github.com/CasaWayra/wayra-backend/internal/handlers"
	"github.com/CasaWayra/wayra-backend/internal/models"
	"github.com/CasaWayra/wayra-backend/internal/routes"
	"github.com/CasaWayra/wayra-backend/internal/services"
	"github.com/CasaWayra/wayra-backend/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	cfg := config.Load()

	if cfg.WhatsAppToken == "" || cfg.PhoneNumberID == "" {
		log.Println("⚠️  WHATSAPP_TOKEN / PHONE_NUMBER_ID not set - outbound messages will fail")
	}

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory session storage (process lifetime only)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.WhatsAppSession{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Prometheus registry with runtime collectors plus the bot's own counters
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize services
	metrics := services.NewSendMetrics(registry)
	whatsappService := services.NewWhatsAppService(cfg, metrics)
	templateService := services.NewTemplateService(cfg)
	conversationService := services.NewConversationService(store, whatsappService, templateService, cfg)
	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Casa Wayra Bot v" + version,
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
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Routes
	healthHandler := handlers.NewHealthHandler(version, storageType(cfg))
	routes.SetupRoutes(app, cfg, conversationService, store, healthHandler, registry)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🍺 Casa Wayra Bot starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("📱 WhatsApp: %s", whatsAppStatus(cfg))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg *config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory"
	}
	return "PostgreSQL Database"
}

func whatsAppStatus(cfg *config.Config) string {
	if cfg.WhatsAppToken == "" {
		return "Not configured"
	}
	return "Configured"
}
