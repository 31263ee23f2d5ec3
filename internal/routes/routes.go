package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CasaWayra/wayra-backend/internal/config"
	"github.com/CasaWayra/wayra-backend/internal/handlers"
	"github.com/CasaWayra/wayra-backend/internal/middleware"
	"github.com/CasaWayra/wayra-backend/internal/services"
	"github.com/CasaWayra/wayra-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	conversation *services.ConversationService,
	store storage.Store,
	health *handlers.HealthHandler,
	registry *prometheus.Registry,
) {
	// Root liveness endpoint (used by the hosting platform)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// ========== WEBHOOK ROUTES ==========
	whatsappHandler := handlers.NewWhatsAppHandler(conversation, cfg.VerifyToken)

	app.Get("/webhook", whatsappHandler.VerifyWebhook)
	app.Post("/webhook",
		middleware.ValidateMetaSignature(cfg.AppSecret),
		whatsappHandler.HandleWebhook,
	)

	// ========== ADMIN ROUTES ==========
	adminHandler := handlers.NewAdminHandler(store)
	admin := app.Group("/admin")
	admin.Get("/sessions", adminHandler.GetActiveSessions)
}
