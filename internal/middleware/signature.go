package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ValidateMetaSignature checks the X-Hub-Signature-256 header Meta
// attaches to webhook POSTs: HMAC-SHA256 of the raw body keyed with the
// app secret. When no secret is configured the check is skipped, which
// keeps local development with ngrok painless.
func ValidateMetaSignature(appSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if appSecret == "" {
			return c.Next()
		}

		signature := c.Get("X-Hub-Signature-256")
		if signature == "" {
			log.Println("❌ Webhook sin firma X-Hub-Signature-256")
			return c.SendStatus(fiber.StatusForbidden)
		}
		signature = strings.TrimPrefix(signature, "sha256=")

		mac := hmac.New(sha256.New, []byte(appSecret))
		mac.Write(c.Body())
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(signature), []byte(expected)) {
			log.Println("❌ Firma de webhook inválida")
			return c.SendStatus(fiber.StatusForbidden)
		}

		return c.Next()
	}
}
