package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/CasaWayra/wayra-backend/internal/models"
	"github.com/CasaWayra/wayra-backend/internal/services"
)

// WhatsAppHandler handles the Meta Cloud API webhook endpoints
type WhatsAppHandler struct {
	conversation *services.ConversationService
	verifyToken  string
}

// NewWhatsAppHandler creates a new WhatsApp webhook handler
func NewWhatsAppHandler(conversation *services.ConversationService, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		conversation: conversation,
		verifyToken:  verifyToken,
	}
}

// VerifyWebhook answers Meta's GET verification handshake
func (h *WhatsAppHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		log.Println("✅ Webhook verificado por Meta")
		return c.SendString(challenge)
	}

	log.Println("❌ Verificación de webhook rechazada: token inválido")
	return c.SendStatus(fiber.StatusForbidden)
}

// HandleWebhook processes an inbound webhook delivery. It always
// responds 200 (except the GET handshake) so Meta does not redeliver.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload models.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("⚠️ Webhook con payload ilegible: %v", err)
		return c.SendStatus(fiber.StatusOK)
	}

	msg := payload.FirstMessage()
	if msg == nil {
		// Status updates, receipts, etc.
		return c.SendStatus(fiber.StatusOK)
	}

	from := msg.From
	if from == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	var err error
	switch {
	case msg.Interactive != nil && msg.Interactive.ButtonReply != nil:
		err = h.conversation.HandleSelection(from, msg.Interactive.ButtonReply.ID)
	case msg.Interactive != nil && msg.Interactive.ListReply != nil:
		err = h.conversation.HandleSelection(from, msg.Interactive.ListReply.ID)
	case msg.Text != nil:
		err = h.conversation.HandleText(from, msg.Text.Body)
	default:
		// Media, reactions and other unhandled types are ignored
	}

	if err != nil {
		log.Printf("❌ Error procesando mensaje de %s: %v", from, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
