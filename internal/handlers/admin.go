package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CasaWayra/wayra-backend/internal/storage"
)

// AdminHandler exposes monitoring endpoints
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// GetActiveSessions lists the sessions currently mid-flow
func (h *AdminHandler) GetActiveSessions(c *fiber.Ctx) error {
	sessions, err := h.store.GetActiveSessions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": sessions,
		"count":    len(sessions),
	})
}
