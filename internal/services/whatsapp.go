package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/CasaWayra/wayra-backend/internal/config"
)

const graphAPIBaseURL = "https://graph.facebook.com"

// ReplyButton is one quick-reply button (max 3 per message, titles ≤ 20 chars)
type ReplyButton struct {
	ID    string
	Title string
}

// ListRow is one selectable row inside a list section
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under a section title
type ListSection struct {
	Title string
	Rows  []ListRow
}

// MessageSender is the outbound capability the conversation core needs.
// WhatsAppService implements it against the Cloud API; tests use a fake.
type MessageSender interface {
	SendText(to, body string) error
	SendImage(to, link, caption string) error
	SendLocation(to string, lat, lng float64, name, address string) error
	SendButtons(to, body string, buttons []ReplyButton) error
	SendList(to, body, buttonText string, sections []ListSection) error
}

// WhatsAppService sends messages through the Meta WhatsApp Cloud API
type WhatsAppService struct {
	httpClient *http.Client
	apiURL     string
	token      string
	metrics    *SendMetrics
}

// NewWhatsAppService creates a new WhatsApp Cloud API client
func NewWhatsAppService(cfg *config.Config, metrics *SendMetrics) *WhatsAppService {
	return &WhatsAppService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL: fmt.Sprintf("%s/%s/%s/messages",
			graphAPIBaseURL, cfg.GraphAPIVersion, cfg.PhoneNumberID),
		token:   cfg.WhatsAppToken,
		metrics: metrics,
	}
}

// SendText sends a plain text message
func (w *WhatsAppService) SendText(to, body string) error {
	return w.send("text", map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"body": body,
		},
	})
}

// SendImage sends an image by URL with an optional caption
func (w *WhatsAppService) SendImage(to, link, caption string) error {
	return w.send("image", map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "image",
		"image": map[string]interface{}{
			"link":    link,
			"caption": caption,
		},
	})
}

// SendLocation sends a map pin
func (w *WhatsAppService) SendLocation(to string, lat, lng float64, name, address string) error {
	return w.send("location", map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "location",
		"location": map[string]interface{}{
			"latitude":  lat,
			"longitude": lng,
			"name":      name,
			"address":   address,
		},
	})
}

// SendButtons sends an interactive button message (up to 3 reply buttons)
func (w *WhatsAppService) SendButtons(to, body string, buttons []ReplyButton) error {
	waButtons := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		waButtons = append(waButtons, map[string]interface{}{
			"type": "reply",
			"reply": map[string]interface{}{
				"id":    b.ID,
				"title": b.Title,
			},
		})
	}

	return w.send("interactive", map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "button",
			"body": map[string]interface{}{"text": body},
			"action": map[string]interface{}{
				"buttons": waButtons,
			},
		},
	})
}

// SendList sends an interactive list message with sectioned rows
func (w *WhatsAppService) SendList(to, body, buttonText string, sections []ListSection) error {
	waSections := make([]map[string]interface{}, 0, len(sections))
	for _, s := range sections {
		rows := make([]map[string]interface{}, 0, len(s.Rows))
		for _, r := range s.Rows {
			row := map[string]interface{}{
				"id":    r.ID,
				"title": r.Title,
			}
			if r.Description != "" {
				row["description"] = r.Description
			}
			rows = append(rows, row)
		}
		waSections = append(waSections, map[string]interface{}{
			"title": s.Title,
			"rows":  rows,
		})
	}

	return w.send("interactive", map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "list",
			"body": map[string]interface{}{"text": body},
			"action": map[string]interface{}{
				"button":   buttonText,
				"sections": waSections,
			},
		},
	})
}

// send posts a payload to the Cloud API messages endpoint
func (w *WhatsAppService) send(msgType string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		w.metrics.RecordFailure(msgType)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		w.metrics.RecordFailure(msgType)
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.metrics.RecordFailure(msgType)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		w.metrics.RecordFailure(msgType)
		log.Printf("❌ WhatsApp API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return fmt.Errorf("whatsapp API error %d: %s", resp.StatusCode, string(body))
	}

	w.metrics.RecordSuccess(msgType)
	return nil
}
